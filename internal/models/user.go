package models

import "time"

// User is the authenticated account profile as returned by the backend.
// Fields beyond ID and Email are carried opaquely; the client never edits
// them.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// GuestUserID namespaces per-user caches when nobody is logged in.
const GuestUserID = "guest"
