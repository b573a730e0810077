package handlers

import (
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User          interface{} `json:"user"`
	Authenticated bool        `json:"authenticated"`
	IsInitialized bool        `json:"is_initialized"`
	Error         string      `json:"error,omitempty"`
}

// Login handles POST /api/auth/login.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	if err := a.Session.Login(r.Context(), req.Email, req.Password); err != nil {
		writeStoreError(w, err)
		return
	}
	a.writeSession(w, http.StatusOK)
}

// Register handles POST /api/auth/register.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	if err := a.Session.Register(r.Context(), req.Email, req.Password); err != nil {
		writeStoreError(w, err)
		return
	}
	a.writeSession(w, http.StatusCreated)
}

// Logout handles POST /api/auth/logout. Always succeeds.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.Session.Logout(r.Context())
	a.writeSession(w, http.StatusOK)
}

// GetSession handles GET /api/auth/session: the view layer's snapshot of who
// is logged in and whether hydration has settled.
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	a.writeSession(w, http.StatusOK)
}

// ChangePassword handles POST /api/auth/change-password.
func (a *API) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current and new passwords are required")
		return
	}

	if err := a.Session.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

func (a *API) writeSession(w http.ResponseWriter, status int) {
	var user interface{}
	if u := a.Session.User(); u != nil {
		user = u
	}
	writeJSON(w, status, sessionResponse{
		User:          user,
		Authenticated: a.Session.Authenticated(),
		IsInitialized: a.Session.IsInitialized(),
		Error:         a.Session.LastError(),
	})
}
