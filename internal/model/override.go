package model

import "time"

// OverrideRecord captures a user choosing differently from the suggestion.
type OverrideRecord struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	ItemCategory string    `json:"item_category"`
	AISuggestion Outcome   `json:"ai_suggestion"`
	UserChoice   Outcome   `json:"user_choice"`
	Reason       string    `json:"reason"`
	UserID       int64     `json:"user_id"`
	ItemID       int64     `json:"item_id"`
}
