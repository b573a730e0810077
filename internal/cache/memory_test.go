package cache

import (
	"context"
	"testing"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	if err := s.Set(ctx, KeyUserData, profile{ID: "u1", Name: "Jo"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got profile
	ok, err := s.Get(ctx, KeyUserData, &got)
	if err != nil || !ok {
		t.Fatalf("Get ok=%v err=%v", ok, err)
	}
	if got.ID != "u1" || got.Name != "Jo" {
		t.Errorf("got %+v", got)
	}
}

func TestMemoryStoreMissingKeyIsMiss(t *testing.T) {
	s := NewMemoryStore()
	var dest map[string]string
	ok, err := s.Get(context.Background(), KeyCatalog, &dest)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("missing key reported as hit")
	}
}

func TestMemoryStoreCorruptValueIsMiss(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.SetString(ctx, KeyUserData, "{not json")

	var dest map[string]string
	ok, err := s.Get(ctx, KeyUserData, &dest)
	if err != nil {
		t.Fatalf("Get: %v (corruption must degrade to a miss)", err)
	}
	if ok {
		t.Error("corrupt value reported as hit")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.SetString(ctx, KeyToken, "tok")
	s.SetString(ctx, KeyCurrentUser, "u1")

	if err := s.Delete(ctx, KeyToken, KeyCurrentUser); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.GetString(ctx, KeyToken); ok {
		t.Error("token survived delete")
	}
	if _, ok, _ := s.GetString(ctx, KeyCurrentUser); ok {
		t.Error("current user pointer survived delete")
	}
}

func TestPerUserKeysAreNamespaced(t *testing.T) {
	if KeyBasket("u1") == KeyBasket("guest") {
		t.Error("basket keys collide across users")
	}
	if KeyFavorites("u1") == KeyOrders("u1") {
		t.Error("favorites and orders keys collide")
	}
}
