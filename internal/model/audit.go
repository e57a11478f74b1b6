package model

import "time"

// SearchPrompt is the write-once audit row for a recommendation request.
type SearchPrompt struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Username  string    `gorm:"size:255;index" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (SearchPrompt) TableName() string {
	return "search_prompts"
}

// AIResponse stores the full model text produced for a prompt.
type AIResponse struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Username  string    `gorm:"size:255;index" json:"username"`
	Response  string    `gorm:"type:text" json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

func (AIResponse) TableName() string {
	return "ai_responses"
}
