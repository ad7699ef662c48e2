package model

import "time"

// Endpoint names recorded on usage records.
const (
	EndpointAnalyzeImage = "analyze-image"
	EndpointExplain      = "explain"
)

// UsageRecord is one attempted vendor call.
type UsageRecord struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Endpoint      string    `json:"endpoint"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	UserID        int64     `json:"user_id"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	EstimatedCost float64   `json:"estimated_cost"`
	Success       bool      `json:"success"`
	UsedOwnKey    bool      `json:"used_own_key"`
}

// UsageSummary aggregates a user's usage since a point in time. Requests and
// token counts include own-key calls; Cost only counts what the ceilings count.
type UsageSummary struct {
	Since          time.Time `json:"since"`
	Requests       int       `json:"requests"`
	OwnKeyRequests int       `json:"own_key_requests"`
	Failed         int       `json:"failed"`
	InputTokens    int       `json:"input_tokens"`
	OutputTokens   int       `json:"output_tokens"`
	Cost           float64   `json:"cost"`
}
