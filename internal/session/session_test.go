package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/models"
)

type backendFake struct {
	mux *http.ServeMux
	srv *httptest.Server

	user      models.User
	validTok  string
	favorites []models.Build
	orders    []models.Order
}

func newBackendFake(t *testing.T) *backendFake {
	t.Helper()
	b := &backendFake{
		mux:      http.NewServeMux(),
		user:     models.User{ID: "u1", Email: "jo@example.com", Name: "Jo"},
		validTok: "tok-valid",
	}
	b.mux.HandleFunc("/auth/check", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+b.validTok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
			return
		}
		json.NewEncoder(w).Encode(b.user)
	})
	b.mux.HandleFunc("/favorites", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(b.favorites)
	})
	b.mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(b.orders)
	})
	b.mux.HandleFunc("/basket", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})
	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

func newSessionStore(t *testing.T, backendURL string) (*Store, *cache.MemoryStore) {
	t.Helper()
	c := cache.NewMemoryStore()
	return New(backendURL, c, events.NewHub()), c
}

func TestInitializeWithoutTokenIsAnonymous(t *testing.T) {
	s, _ := newSessionStore(t, "http://unused")

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !s.IsInitialized() {
		t.Error("IsInitialized = false, want true")
	}
	if s.Authenticated() {
		t.Error("Authenticated = true, want false")
	}
	if s.User() != nil {
		t.Errorf("User = %+v, want nil", s.User())
	}
}

func TestInitializeWithValidTokenHydrates(t *testing.T) {
	backend := newBackendFake(t)
	backend.favorites = []models.Build{{ID: 1, Name: "Saved Build"}}
	backend.orders = []models.Order{
		{ID: 1, CreatedAt: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 2, CreatedAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)},
	}

	s, c := newSessionStore(t, backend.srv.URL)
	ctx := context.Background()
	c.SetString(ctx, cache.KeyToken, backend.validTok)

	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !s.Authenticated() {
		t.Fatal("Authenticated = false after valid check")
	}
	if got := s.User(); got == nil || got.ID != "u1" {
		t.Errorf("User = %+v, want id u1", got)
	}
	if got := s.Favorites(); len(got) != 1 || got[0].Name != "Saved Build" {
		t.Errorf("Favorites = %+v", got)
	}
	orders := s.Orders()
	if len(orders) != 2 || orders[0].ID != 2 {
		t.Errorf("Orders = %+v, want newest first", orders)
	}

	var mirrored models.User
	if ok, _ := c.Get(ctx, cache.KeyUserData, &mirrored); !ok || mirrored.ID != "u1" {
		t.Errorf("profile mirror = %+v ok=%v", mirrored, ok)
	}
	if id, ok, _ := c.GetString(ctx, cache.KeyCurrentUser); !ok || id != "u1" {
		t.Errorf("current user pointer = %q ok=%v", id, ok)
	}
}

func TestInitializeRejectedTokenIsInvalidated(t *testing.T) {
	backend := newBackendFake(t)
	s, c := newSessionStore(t, backend.srv.URL)
	ctx := context.Background()

	c.SetString(ctx, cache.KeyToken, "tok-dead")
	c.Set(ctx, cache.KeyUserData, models.User{ID: "u1", Email: "jo@example.com"})

	err := s.Initialize(ctx)
	if err == nil {
		t.Fatal("Initialize returned nil, want degradation error")
	}
	if !s.IsInitialized() {
		t.Error("IsInitialized = false, want true even after rejection")
	}
	if s.Authenticated() {
		t.Error("Authenticated = true after hard invalidation")
	}
	if _, ok, _ := c.GetString(ctx, cache.KeyToken); ok {
		t.Error("rejected token still cached")
	}
	var u models.User
	if ok, _ := c.Get(ctx, cache.KeyUserData, &u); ok {
		t.Error("cached profile survived hard invalidation")
	}
}

func TestInitializeOfflineFallback(t *testing.T) {
	// Point at a closed server so the identity check fails at the network layer.
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	s, c := newSessionStore(t, deadURL)
	ctx := context.Background()

	c.SetString(ctx, cache.KeyToken, "tok-offline")
	c.Set(ctx, cache.KeyUserData, models.User{ID: "u1", Email: "jo@example.com", Name: "Jo"})
	c.Set(ctx, cache.KeyFavorites("u1"), []models.Build{{ID: 9, Name: "Offline Build"}})

	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v (offline fallback should absorb the outage)", err)
	}
	if !s.Authenticated() {
		t.Fatal("Authenticated = false, want offline-authenticated")
	}
	if s.Token() != "tok-offline" {
		t.Errorf("Token = %q, want preserved token", s.Token())
	}
	if got := s.User(); got == nil || got.Name != "Jo" {
		t.Errorf("User = %+v, want cached profile", got)
	}
	if got := s.Favorites(); len(got) != 1 || got[0].ID != 9 {
		t.Errorf("Favorites = %+v, want cached list", got)
	}
}

func TestInitializeOutageWithoutProfileIsAnonymous(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	s, c := newSessionStore(t, deadURL)
	ctx := context.Background()
	c.SetString(ctx, cache.KeyToken, "tok-offline")

	err := s.Initialize(ctx)
	if err == nil {
		t.Fatal("Initialize returned nil, want the network cause")
	}
	if !s.IsInitialized() || s.Authenticated() {
		t.Errorf("initialized=%v authenticated=%v, want initialized anonymous",
			s.IsInitialized(), s.Authenticated())
	}
	if s.LastError() == "" {
		t.Error("LastError empty, want recorded hydration failure")
	}
}

func TestLoginErrorTyping(t *testing.T) {
	cases := []struct {
		message string
		want    error
	}{
		{"Invalid password", ErrInvalidPassword},
		{"User not found", ErrUserNotFound},
		{"Token malformed", ErrUnauthorized},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": tc.message})
		}))

		s, _ := newSessionStore(t, srv.URL)
		err := s.Login(context.Background(), "jo@example.com", "nope")
		if !errors.Is(err, tc.want) {
			t.Errorf("message %q: err = %v, want %v", tc.message, err, tc.want)
		}
		if s.Authenticated() {
			t.Errorf("message %q: session authenticated after failed login", tc.message)
		}
		srv.Close()
	}
}

func TestLoginSuccessPersistsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user":  models.User{ID: "u1", Email: "jo@example.com"},
			"token": "tok-new",
		})
	}))
	defer srv.Close()

	s, c := newSessionStore(t, srv.URL)
	ctx := context.Background()

	if err := s.Login(ctx, "jo@example.com", "secret123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Token() != "tok-new" {
		t.Errorf("Token = %q, want tok-new", s.Token())
	}
	if tok, ok, _ := c.GetString(ctx, cache.KeyToken); !ok || tok != "tok-new" {
		t.Errorf("cached token = %q ok=%v", tok, ok)
	}
}

func TestLogoutClearsPerUserState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user":  models.User{ID: "u1"},
			"token": "tok",
		})
	}))
	defer srv.Close()

	s, c := newSessionStore(t, srv.URL)
	ctx := context.Background()

	if err := s.Login(ctx, "jo@example.com", "secret123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	c.Set(ctx, cache.KeyBasket("u1"), []models.BasketItem{{BuildID: 1, Quantity: 1}})

	s.Logout(ctx)
	s.Logout(ctx) // idempotent

	if s.Authenticated() || s.User() != nil {
		t.Error("session state survived logout")
	}
	for _, key := range []string{cache.KeyToken, cache.KeyCurrentUser, cache.KeyUserData, cache.KeyBasket("u1")} {
		if _, ok, _ := c.GetString(ctx, key); ok {
			t.Errorf("key %q survived logout", key)
		}
	}
}

func TestCurrentUserIDResolution(t *testing.T) {
	ctx := context.Background()

	t.Run("guest when nothing known", func(t *testing.T) {
		s, _ := newSessionStore(t, "http://unused")
		if got := s.CurrentUserID(ctx); got != models.GuestUserID {
			t.Errorf("CurrentUserID = %q, want %q", got, models.GuestUserID)
		}
	})

	t.Run("cached pointer wins over token claims", func(t *testing.T) {
		s, c := newSessionStore(t, "http://unused")
		c.SetString(ctx, cache.KeyCurrentUser, "u-cached")
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u-other"}).
			SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()

		if got := s.CurrentUserID(ctx); got != "u-cached" {
			t.Errorf("CurrentUserID = %q, want u-cached", got)
		}
	})

	t.Run("token claims as last resort before guest", func(t *testing.T) {
		s, _ := newSessionStore(t, "http://unused")
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u-claims"}).
			SignedString([]byte("test-secret"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()

		if got := s.CurrentUserID(ctx); got != "u-claims" {
			t.Errorf("CurrentUserID = %q, want u-claims", got)
		}
	})
}
