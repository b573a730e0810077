package session

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/models"
)

// Favorites returns a copy of the saved builds.
func (s *Store) Favorites() []models.Build {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Build, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// ReloadFavorites refetches the favorites list from the server and replaces
// the in-memory and cached copies.
func (s *Store) ReloadFavorites(ctx context.Context) error {
	var favorites []models.Build
	if err := s.gw.JSON(ctx, http.MethodGet, "/favorites", nil, &favorites); err != nil {
		return err
	}

	s.mu.Lock()
	s.favorites = favorites
	s.mu.Unlock()

	s.persistFavorites(ctx)
	return nil
}

// AddFavorite saves a build to the profile. No optimistic update: the list
// only changes after the server accepts.
func (s *Store) AddFavorite(ctx context.Context, buildID int64) (models.Build, error) {
	body := map[string]int64{"build_id": buildID}
	var saved models.Build
	if err := s.gw.JSON(ctx, http.MethodPost, "/favorites", body, &saved); err != nil {
		return models.Build{}, err
	}

	s.mu.Lock()
	s.favorites = append(s.favorites, saved)
	s.mu.Unlock()

	s.persistFavorites(ctx)
	return saved, nil
}

// RemoveFavorite deletes a saved build; local state changes only on success.
func (s *Store) RemoveFavorite(ctx context.Context, favoriteID int64) error {
	path := fmt.Sprintf("/favorites/%d", favoriteID)
	if err := s.gw.JSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.favorites[:0]
	for _, fav := range s.favorites {
		if fav.ID != favoriteID {
			kept = append(kept, fav)
		}
	}
	s.favorites = kept
	s.mu.Unlock()

	s.persistFavorites(ctx)
	return nil
}

// UpdateFavorite replaces a saved build's definition via the builds endpoint
// and swaps the local entry for the server's canonical copy.
func (s *Store) UpdateFavorite(ctx context.Context, buildID int64, updated models.Build) (models.Build, error) {
	path := fmt.Sprintf("/builds/%d", buildID)
	var saved models.Build
	if err := s.gw.JSON(ctx, http.MethodPut, path, updated, &saved); err != nil {
		return models.Build{}, err
	}

	s.mu.Lock()
	for i, fav := range s.favorites {
		if fav.ID == saved.ID {
			s.favorites[i] = saved
		}
	}
	s.mu.Unlock()

	s.persistFavorites(ctx)
	return saved, nil
}

func (s *Store) persistFavorites(ctx context.Context) {
	s.mu.Lock()
	user := s.user
	favorites := make([]models.Build, len(s.favorites))
	copy(favorites, s.favorites)
	s.mu.Unlock()

	if user != nil {
		if err := s.cache.Set(ctx, cache.KeyFavorites(user.ID), favorites); err != nil {
			log.Printf("session: failed to mirror favorites: %v", err)
		}
	}
	s.hub.Publish(events.TypeFavoritesChanged, map[string]int{"count": len(favorites)})
}
