package models

import "math"

// Category identifies a slot in a PC configuration. Every complete build has
// exactly one component per category.
type Category string

const (
	CategoryProcessor   Category = "processor"
	CategoryMotherboard Category = "motherboard"
	CategoryMemory      Category = "memory"
	CategoryCooling     Category = "cooling"
	CategoryVideoCard   Category = "video_card"
	CategoryPowerSupply Category = "power_supply"
	CategoryStorage     Category = "storage"
	CategoryCase        Category = "case"
)

// Categories lists every category in picker order.
var Categories = []Category{
	CategoryProcessor,
	CategoryMotherboard,
	CategoryMemory,
	CategoryCooling,
	CategoryVideoCard,
	CategoryPowerSupply,
	CategoryStorage,
	CategoryCase,
}

// Component is a single catalog entry (one CPU, one case, ...).
// Socket is only populated for processors and motherboards and drives
// compatibility filtering.
type Component struct {
	ID       int64    `json:"id"`
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Socket   string   `json:"socket,omitempty"`
}

// Catalog groups the full component listing by category.
type Catalog map[Category][]Component

// Selection maps a category to the single component chosen for it.
type Selection map[Category]Component

// RoundPrice rounds to the nearest whole currency unit. All prices are
// rounded on receipt from the backend.
func RoundPrice(p float64) float64 {
	return math.Round(p)
}
