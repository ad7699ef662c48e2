package model

import "time"

// Dimension is one of the categorical questions asked about an item.
type Dimension string

// Answer dimensions used by the scoring engine.
const (
	DimensionUsage          Dimension = "usage"
	DimensionSentimental    Dimension = "sentimental"
	DimensionCondition      Dimension = "condition"
	DimensionValue          Dimension = "value"
	DimensionReplaceability Dimension = "replaceability"
	DimensionSpace          Dimension = "space"
)

// Dimensions lists every answer dimension in canonical order.
var Dimensions = []Dimension{
	DimensionUsage,
	DimensionSentimental,
	DimensionCondition,
	DimensionValue,
	DimensionReplaceability,
	DimensionSpace,
}

// Answers holds a user's categorical answers for one item.
type Answers struct {
	Usage          string `json:"usage" yaml:"usage"`
	Sentimental    string `json:"sentimental" yaml:"sentimental"`
	Condition      string `json:"condition" yaml:"condition"`
	Value          string `json:"value" yaml:"value"`
	Replaceability string `json:"replaceability" yaml:"replaceability"`
	Space          string `json:"space" yaml:"space"`
}

// Get returns the answer given for a dimension.
func (a Answers) Get(d Dimension) string {
	switch d {
	case DimensionUsage:
		return a.Usage
	case DimensionSentimental:
		return a.Sentimental
	case DimensionCondition:
		return a.Condition
	case DimensionValue:
		return a.Value
	case DimensionReplaceability:
		return a.Replaceability
	case DimensionSpace:
		return a.Space
	default:
		return ""
	}
}

// Item is a physical possession owned by a user.
type Item struct {
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Recommendation     *Outcome  `json:"recommendation,omitempty"`
	Name               string    `json:"name"`
	Category           string    `json:"category"`
	Notes              string    `json:"notes"`
	Condition          string    `json:"condition"`
	Sentimental        string    `json:"sentimental"`
	LastUsed           string    `json:"last_used"`
	Space              string    `json:"space"`
	UsageFrequency     string    `json:"usage_frequency"`
	ValueTier          string    `json:"value_tier"`
	Replaceability     string    `json:"replaceability"`
	RecommendationFrom string    `json:"recommendation_strategy,omitempty"`
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
}

// Answers derives the scoring answers stored on the item.
// Usage falls back to the last-used timeframe when no frequency was recorded.
func (i Item) Answers() Answers {
	usage := i.UsageFrequency
	if usage == "" {
		usage = i.LastUsed
	}
	return Answers{
		Usage:          usage,
		Sentimental:    i.Sentimental,
		Condition:      i.Condition,
		Value:          i.ValueTier,
		Replaceability: i.Replaceability,
		Space:          i.Space,
	}
}

// User holds the profile fields the decision pipeline reads.
type User struct {
	CreatedAt         time.Time `json:"created_at"`
	Name              string    `json:"name"`
	Goal              string    `json:"goal"`
	PersonalityMode   string    `json:"personality_mode"`
	PreferredProvider string    `json:"preferred_provider"`
	APIKey            string    `json:"-"`
	ID                int64     `json:"id"`
}

// HasOwnKey reports whether the user supplied their own vendor credential.
func (u User) HasOwnKey() bool {
	return u.APIKey != ""
}
