package model

import "time"

// Tone is the emotional register detected in an item's notes.
type Tone string

// Tone constants.
const (
	ToneSentimental  Tone = "sentimental"
	ToneFrustrated   Tone = "frustrated"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneNeutral      Tone = "neutral"
)

// Season is a coarse calendar bucket.
type Season string

// Season constants.
const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// SeasonOf buckets a date into a northern-hemisphere season.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.December, time.January, time.February:
		return SeasonWinter
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	default:
		return SeasonFall
	}
}

// PatternSummary is the output of mining a user's override history.
type PatternSummary struct {
	Transitions  map[string]map[string]int `json:"transitions,omitempty"`
	Patterns     []string                  `json:"patterns"`
	Total        int                       `json:"total"`
	OverrideRate int                       `json:"override_rate"`
}

// EvaluationContext collects every signal used to explain one recommendation.
// It is built per request and never persisted.
type EvaluationContext struct {
	Item            Item     `json:"item"`
	UserGoal        string   `json:"user_goal"`
	PersonalityMode string   `json:"personality_mode"`
	Season          Season   `json:"season"`
	EmotionalTone   Tone     `json:"emotional_tone"`
	ToneInstruction string   `json:"tone_instruction"`
	Patterns        []string `json:"patterns"`
	DuplicateCount  int      `json:"duplicate_count"`
	OverrideRate    int      `json:"override_rate"`
}
