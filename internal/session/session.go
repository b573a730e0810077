// Package session owns the authenticated session: current user, token,
// favorites and orders. It orchestrates login, registration, logout and the
// startup hydration that decides between live, offline and anonymous modes.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/gateway"
	"github.com/pcforge/storefront-client/internal/models"
)

// Typed login failures, derived from the backend's 401 message body so the
// view can distinguish a bad password from an unknown account.
var (
	ErrInvalidPassword  = errors.New("invalid password")
	ErrUserNotFound     = errors.New("no account exists with this email")
	ErrUnauthorized     = errors.New("authorization failed")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// BasketControl is the slice of the basket store the session drives: guest
// hydration on anonymous startup and wholesale replacement when the server
// basket snapshot arrives.
type BasketControl interface {
	LoadForUser(ctx context.Context) error
	SetItems(ctx context.Context, items []models.BasketItem)
}

// Store is the session store. All state transitions go through it; the local
// cache mirrors every committed change.
type Store struct {
	mu          sync.Mutex
	user        *models.User
	token       string
	favorites   []models.Build
	orders      []models.Order
	initialized bool
	lastError   string

	cache  cache.Store
	hub    *events.Hub
	gw     *gateway.Gateway
	basket BasketControl
}

// New builds the session store and its gateway. The store itself is the
// gateway's token source, so protected calls made anywhere in the client
// share the single refresh-then-logout path.
func New(backendURL string, c cache.Store, hub *events.Hub) *Store {
	s := &Store{cache: c, hub: hub}
	s.gw = gateway.New(backendURL, s)
	return s
}

// Gateway exposes the authenticated gateway for the other stores.
func (s *Store) Gateway() *gateway.Gateway { return s.gw }

// AttachBasket wires the basket store in after construction (the basket needs
// the session for identity, so the two are linked in main).
func (s *Store) AttachBasket(b BasketControl) { s.basket = b }

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Initialize hydrates the session at startup. It always terminates in an
// initialized state: authenticated when the token checks out (or a cached
// profile covers a backend outage), anonymous otherwise. A returned error
// means degraded hydration, not a failed one.
func (s *Store) Initialize(ctx context.Context) error {
	token, ok, err := s.cache.GetString(ctx, cache.KeyToken)
	if err != nil {
		log.Printf("session: cache unavailable during init: %v", err)
	}
	if !ok || token == "" {
		s.commitAnonymous("")
		s.loadGuestBasket(ctx)
		return nil
	}

	res, err := s.gw.Once(ctx, http.MethodGet, "/auth/check", nil, token)
	if err != nil {
		// Backend unreachable: fall back to the cached profile without
		// re-validating the token.
		return s.offlineFallback(ctx, token, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		// Hard invalidation: the token is dead, and so is the cached profile.
		if err := s.cache.Delete(ctx, cache.KeyToken, cache.KeyUserData); err != nil {
			log.Printf("session: failed to clear invalid token: %v", err)
		}
		return s.offlineFallback(ctx, "", fmt.Errorf("session check rejected: %w", ErrUnauthorized))
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return s.offlineFallback(ctx, token, gateway.DecodeError(res))
	}

	var user models.User
	if err := decodeJSON(res.Body, &user); err != nil {
		return s.offlineFallback(ctx, token, fmt.Errorf("malformed check response: %w", err))
	}

	if err := s.cache.SetString(ctx, cache.KeyCurrentUser, user.ID); err != nil {
		log.Printf("session: failed to persist current user id: %v", err)
	}
	if err := s.cache.Set(ctx, cache.KeyUserData, user); err != nil {
		log.Printf("session: failed to persist profile: %v", err)
	}

	// Best-effort hydration, in order: favorites, orders, basket. A failure
	// in one never aborts the others.
	favorites := s.fetchFavorites(ctx, token, user.ID)
	orders := s.fetchOrders(ctx, token, user.ID)
	s.fetchServerBasket(ctx, token)

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.favorites = favorites
	s.orders = orders
	s.initialized = true
	s.lastError = ""
	s.mu.Unlock()

	s.hub.Publish(events.TypeSessionChanged, map[string]string{"user_id": user.ID})
	return nil
}

// offlineFallback resolves Initialize when the identity check did not
// succeed. With a cached profile the session comes up authenticated on stale
// data; otherwise it comes up anonymous with the failure recorded.
func (s *Store) offlineFallback(ctx context.Context, token string, cause error) error {
	var user models.User
	ok, _ := s.cache.Get(ctx, cache.KeyUserData, &user)
	if ok && user.ID != "" {
		var favorites []models.Build
		s.cache.Get(ctx, cache.KeyFavorites(user.ID), &favorites)
		var orders []models.Order
		s.cache.Get(ctx, cache.KeyOrders(user.ID), &orders)

		s.mu.Lock()
		s.user = &user
		s.token = token
		s.favorites = favorites
		s.orders = orders
		s.initialized = true
		s.lastError = ""
		s.mu.Unlock()

		s.loadGuestBasket(ctx)
		log.Printf("session: offline mode for %s: %v", user.Email, cause)
		s.hub.Publish(events.TypeSessionChanged, map[string]string{"user_id": user.ID, "mode": "offline"})
		return nil
	}

	s.commitAnonymous(cause.Error())
	s.loadGuestBasket(ctx)
	return cause
}

func (s *Store) commitAnonymous(errMsg string) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.favorites = nil
	s.orders = nil
	s.initialized = true
	s.lastError = errMsg
	s.mu.Unlock()

	s.hub.Publish(events.TypeSessionChanged, map[string]string{"user_id": ""})
}

func (s *Store) loadGuestBasket(ctx context.Context) {
	if s.basket == nil {
		return
	}
	if err := s.basket.LoadForUser(ctx); err != nil {
		log.Printf("session: basket hydration failed: %v", err)
	}
}

// Login exchanges credentials for a session. On failure the session state is
// left untouched and a typed error is returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/login", email, password)
}

// Register creates an account and starts a session with it.
func (s *Store) Register(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/register", email, password)
}

func (s *Store) authenticate(ctx context.Context, path, email, password string) error {
	res, err := s.gw.Once(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, "")
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return loginError(res)
	}

	var auth authResponse
	if err := decodeJSON(res.Body, &auth); err != nil {
		return fmt.Errorf("malformed auth response: %w", err)
	}
	if auth.Token == "" {
		return fmt.Errorf("auth response missing token")
	}

	s.setUser(ctx, auth.User, auth.Token)
	s.loadGuestBasket(ctx) // switches the basket to the new user's namespace
	return nil
}

// setUser commits a fresh user+token pair and mirrors both to the cache.
func (s *Store) setUser(ctx context.Context, user models.User, token string) {
	if err := s.cache.SetString(ctx, cache.KeyToken, token); err != nil {
		log.Printf("session: failed to persist token: %v", err)
	}
	if err := s.cache.SetString(ctx, cache.KeyCurrentUser, user.ID); err != nil {
		log.Printf("session: failed to persist current user id: %v", err)
	}
	if err := s.cache.Set(ctx, cache.KeyUserData, user); err != nil {
		log.Printf("session: failed to persist profile: %v", err)
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.favorites = nil
	s.orders = nil
	s.initialized = true
	s.lastError = ""
	s.mu.Unlock()

	s.hub.Publish(events.TypeSessionChanged, map[string]string{"user_id": user.ID})
}

// Logout clears the session and every per-user mirror. Idempotent: logging
// out twice is a no-op the second time.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	s.user = nil
	s.token = ""
	s.favorites = nil
	s.orders = nil
	s.initialized = true
	s.mu.Unlock()

	keys := []string{cache.KeyToken, cache.KeyCurrentUser, cache.KeyUserData}
	if userID != "" {
		keys = append(keys,
			cache.KeyBasket(userID),
			cache.KeyFavorites(userID),
			cache.KeyOrders(userID),
		)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Printf("session: failed to clear cached session: %v", err)
	}

	s.hub.Publish(events.TypeSessionChanged, map[string]string{"user_id": ""})
}

// RefreshToken exchanges the current token for a fresh one and persists it.
// Called by the gateway on 401; on error the gateway logs the session out.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	current := s.Token()
	if current == "" {
		return "", ErrNotAuthenticated
	}

	res, err := s.gw.Once(ctx, http.MethodPost, "/auth/refresh", nil, current)
	if err != nil {
		return "", fmt.Errorf("refresh request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", gateway.DecodeError(res)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(res.Body, &body); err != nil {
		return "", fmt.Errorf("malformed refresh response: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("refresh response missing token")
	}

	if err := s.cache.SetString(ctx, cache.KeyToken, body.Token); err != nil {
		log.Printf("session: failed to persist refreshed token: %v", err)
	}
	s.mu.Lock()
	s.token = body.Token
	s.mu.Unlock()

	return body.Token, nil
}

// HandleSessionExpired satisfies gateway.TokenSource.
func (s *Store) HandleSessionExpired(ctx context.Context) {
	log.Println("session: token refresh failed, logging out")
	s.Logout(ctx)
}

// ChangePassword is a plain server round-trip; it mutates no session state.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return s.gw.JSON(ctx, http.MethodPost, "/auth/change-password", body, nil)
}

// Token returns the current bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentUserID resolves the identity used to namespace per-user caches.
// Resolution order: live user, cached current-user pointer, token claims,
// guest sentinel. Every store must go through here so no two stores ever
// disagree on the active namespace.
func (s *Store) CurrentUserID(ctx context.Context) string {
	s.mu.Lock()
	user, token := s.user, s.token
	s.mu.Unlock()

	if user != nil && user.ID != "" {
		return user.ID
	}
	if id, ok, _ := s.cache.GetString(ctx, cache.KeyCurrentUser); ok && id != "" {
		return id
	}
	if id := userIDFromToken(token); id != "" {
		return id
	}
	return models.GuestUserID
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool { return s.Token() != "" }

// User returns the current user, or nil when anonymous.
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsInitialized reports whether startup hydration has settled.
func (s *Store) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// LastError returns the recorded hydration error, if any. It is a side
// channel: an error here never blocks the initialized state.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// loginError maps an auth failure to a typed error. The backend signals the
// exact cause of a 401 in the message body.
func loginError(res *http.Response) error {
	apiErr := gateway.DecodeError(res).(*gateway.APIError)
	if res.StatusCode != http.StatusUnauthorized {
		return apiErr
	}
	switch apiErr.Message {
	case "Invalid password":
		return ErrInvalidPassword
	case "User not found":
		return ErrUserNotFound
	default:
		return ErrUnauthorized
	}
}
