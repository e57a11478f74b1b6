package types

import (
	"errors"

	"github.com/pageza/vinoteca/backend/internal/model"
)

// ErrNotFound is returned by catalog stores when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// EnrichedWine is a wine joined with its food pairings and vineyard. Region, Country and
// Appellation are copied from the vineyard when it resolves.
type EnrichedWine struct {
	model.Wine
	FoodPairings []string        `json:"foodPairings"`
	Vineyard     *model.Vineyard `json:"vineyard"`
	Appellation  string          `json:"appelation,omitempty"`
	Region       string          `json:"region,omitempty"`
	Country      string          `json:"country,omitempty"`
}

// WineQuery is a parameterized catalog lookup. Empty text fields and a nil Year do not
// constrain the result. Text fields match case-insensitively as substrings; WineType and
// Classification both match the classification column.
type WineQuery struct {
	Name           string
	Grape          string
	Classification string
	WineType       string
	Region         string
	Country        string
	Appellation    string
	Vineyard       string
	Food           string
	Year           *int
	Limit          int
}

// CellarWine is one row of a user's cellar: the wine plus the user's own rating.
type CellarWine struct {
	model.Wine
	UserRating  *float64 `json:"user_rating"`
	Description *string  `json:"description"`
}
