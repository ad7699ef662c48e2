package testutil

import "github.com/thunderdanp/declutter-sub000/internal/model"

// UserOption customizes a fixture user.
type UserOption func(*model.User)

// WithName sets the user's name.
func WithName(name string) UserOption {
	return func(u *model.User) { u.Name = name }
}

// WithGoal sets the user's decluttering goal.
func WithGoal(goal string) UserOption {
	return func(u *model.User) { u.Goal = goal }
}

// WithPersonality sets the user's personality mode.
func WithPersonality(mode string) UserOption {
	return func(u *model.User) { u.PersonalityMode = mode }
}

// WithOwnKey gives the user their own vendor key.
func WithOwnKey(provider, key string) UserOption {
	return func(u *model.User) {
		u.PreferredProvider = provider
		u.APIKey = key
	}
}

// ItemOption customizes a fixture item.
type ItemOption func(*model.Item)

// WithItemName sets the item's name.
func WithItemName(name string) ItemOption {
	return func(i *model.Item) { i.Name = name }
}

// WithCategory sets the item's category.
func WithCategory(category string) ItemOption {
	return func(i *model.Item) { i.Category = category }
}

// WithNotes sets the item's free-text notes.
func WithNotes(notes string) ItemOption {
	return func(i *model.Item) { i.Notes = notes }
}

// WithAnswers stores a full set of scoring answers on the item.
func WithAnswers(a model.Answers) ItemOption {
	return func(i *model.Item) {
		i.UsageFrequency = a.Usage
		i.Sentimental = a.Sentimental
		i.Condition = a.Condition
		i.ValueTier = a.Value
		i.Replaceability = a.Replaceability
		i.Space = a.Space
	}
}

// DiscardAnswers score as an obvious discard under the default strategy.
var DiscardAnswers = model.Answers{
	Usage:          "no",
	Sentimental:    "none",
	Condition:      "poor",
	Value:          "low",
	Replaceability: "easy",
	Space:          "no",
}

// KeepAnswers score as an obvious keep under the default strategy.
var KeepAnswers = model.Answers{
	Usage:          "daily",
	Sentimental:    "high",
	Condition:      "good",
	Value:          "high",
	Replaceability: "difficult",
	Space:          "yes",
}
