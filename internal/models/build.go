package models

// Build is a named, priced collection of components. Predefined builds come
// from the backend catalog; user-created builds are saved from the
// configurator. Favorites are builds saved to a user's profile.
type Build struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	ImageURL     string      `json:"image_url,omitempty"`
	TotalPrice   float64     `json:"total_price"`
	Components   []Component `json:"components,omitempty"`
	IsPredefined bool        `json:"is_predefined"`
}

// BasketItem is one purchasable basket line: a build reference plus quantity.
// At most one line exists per build id; Quantity is always >= 1.
//
// CartID is the server-side cart line id, populated only after a successful
// server sync. UnitPrice keeps the original total_price wire name because it
// is the per-unit price of the whole build.
type BasketItem struct {
	BuildID   int64   `json:"build_id"`
	CartID    int64   `json:"cart_id,omitempty"`
	Name      string  `json:"name"`
	Image     string  `json:"img"`
	UnitPrice float64 `json:"total_price"`
	Quantity  int     `json:"quantity"`
}
