package model

import "time"

type User struct {
	ID        int64     `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Username  string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// Rating is one user's score and review of a wine.
type Rating struct {
	ID          int64     `gorm:"column:rating_id;primaryKey;autoIncrement" json:"rating_id"`
	UserID      int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	WineID      int64     `gorm:"column:wine_id;not null;index" json:"wine_id"`
	Value       float64   `gorm:"not null" json:"value"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// CellarEntry is a wine saved to a user's cellar, optionally with the user's rating.
type CellarEntry struct {
	ID        int64     `gorm:"column:cellar_id;primaryKey;autoIncrement" json:"cellar_id"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_cellar_user_wine" json:"user_id"`
	WineID    int64     `gorm:"column:wine_id;not null;uniqueIndex:idx_cellar_user_wine" json:"wine_id"`
	RatingID  *int64    `gorm:"column:rating_id" json:"rating_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CellarEntry) TableName() string {
	return "cellar"
}
