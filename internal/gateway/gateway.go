// Package gateway wraps every outbound call to the storefront backend. It
// attaches the bearer token, intercepts 401 responses with a single
// refresh-and-replay, and forces a logout when the refresh itself fails.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrSessionExpired is returned when a 401 could not be recovered by a token
// refresh. The session has already been logged out by the time callers see it.
var ErrSessionExpired = errors.New("session expired, please login again")

// APIError is a non-2xx backend response carrying the server's message body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (%d)", e.Status)
}

// TokenSource is the session handle the gateway calls back into. It is passed
// in explicitly; the gateway never reaches into a process-wide store.
type TokenSource interface {
	// Token returns the current bearer token, or "" when anonymous.
	Token() string
	// RefreshToken exchanges the current token for a new one.
	RefreshToken(ctx context.Context) (string, error)
	// HandleSessionExpired is invoked after a failed refresh; it must log the
	// session out.
	HandleSessionExpired(ctx context.Context)
}

// Gateway issues authenticated requests against a single backend base URL.
type Gateway struct {
	base   string
	client *http.Client
	tokens TokenSource
}

// New builds a gateway for the given backend. tokens may be nil for a purely
// anonymous gateway (catalog-only use).
func New(baseURL string, tokens TokenSource) *Gateway {
	return &Gateway{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 15 * time.Second},
		tokens: tokens,
	}
}

// Do issues one request with the current token and performs at most one
// refresh-and-replay when the backend answers 401. Any other status is
// returned to the caller untouched; non-401 failures are never retried.
func (g *Gateway) Do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	token := ""
	if g.tokens != nil {
		token = g.tokens.Token()
	}

	res, err := g.send(ctx, method, path, payload, token)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusUnauthorized || g.tokens == nil {
		return res, nil
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()

	newToken, err := g.tokens.RefreshToken(ctx)
	if err != nil {
		log.Printf("gateway: token refresh failed: %v", err)
		g.tokens.HandleSessionExpired(ctx)
		return nil, ErrSessionExpired
	}
	return g.send(ctx, method, path, payload, newToken)
}

// Once issues a single request without 401 interception. The auth endpoints
// themselves (login, check, refresh) go through here so a rejected credential
// cannot trigger a recursive refresh.
func (g *Gateway) Once(ctx context.Context, method, path string, body interface{}, token string) (*http.Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	return g.send(ctx, method, path, payload, token)
}

// JSON runs Do and decodes a 2xx response body into dest (dest may be nil).
// A non-2xx response is drained and returned as an *APIError carrying the
// server's message field.
func (g *Gateway) JSON(ctx context.Context, method, path string, body, dest interface{}) error {
	res, err := g.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return DecodeError(res)
	}
	if dest == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

// DecodeError turns a non-2xx response into an *APIError, pulling the
// human-readable message out of the {"message": ...} body when present.
func DecodeError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}

func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	return g.client.Do(req)
}

func encodeBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}
