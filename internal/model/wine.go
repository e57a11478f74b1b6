package model

// Wine is a catalog item. Rating is the aggregate rating; wines without one are never
// returned by catalog searches.
type Wine struct {
	ID             int64    `gorm:"column:wine_id;primaryKey;autoIncrement" json:"wine_id"`
	Name           string   `gorm:"size:255;not null" json:"name"`
	Classification string   `gorm:"size:100" json:"classification"`
	Grape          string   `gorm:"size:255" json:"grape"`
	Year           *int     `json:"year"`
	Price          *float64 `json:"price"`
	Rating         *float64 `gorm:"index" json:"rating"`
	VineyardID     *int64   `gorm:"column:vineyard_id;index" json:"vineyard_id"`
}

func (Wine) TableName() string {
	return "wines"
}

// Vineyard is the production origin referenced by Wine.VineyardID.
type Vineyard struct {
	ID          int64  `gorm:"column:vineyard_id;primaryKey;autoIncrement" json:"vineyard_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Region      string `gorm:"size:255" json:"region"`
	Country     string `gorm:"size:255" json:"country"`
	Appellation string `gorm:"column:appelation;size:255" json:"appelation"`
}

func (Vineyard) TableName() string {
	return "vineyards"
}

// FoodPairing associates a wine with one food term.
type FoodPairing struct {
	ID     int64  `gorm:"column:food_pairing_id;primaryKey;autoIncrement" json:"food_pairing_id"`
	WineID int64  `gorm:"column:wine_id;not null;index" json:"wine_id"`
	Name   string `gorm:"size:255;not null" json:"name"`
}

func (FoodPairing) TableName() string {
	return "food_pairings"
}
