package types

// RecommendationRequest is the body of the AI search endpoint
type RecommendationRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Username string `json:"username"`
}

// WineInfoRequest is the body of the wine-info endpoint
type WineInfoRequest struct {
	WineName string `json:"wineName" binding:"required"`
}

// AddToCellarRequest saves a wine to a user's cellar with an optional rating and review
type AddToCellarRequest struct {
	Username string   `json:"username" binding:"required"`
	WineID   int64    `json:"wine_id" binding:"required"`
	Rating   *float64 `json:"rating" binding:"omitempty,min=0,max=10"`
	Review   string   `json:"review" binding:"max=2000"`
}
