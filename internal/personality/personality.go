// Package personality maps a user's selected advisor persona to the
// instructions that shape generated explanations.
package personality

import "sort"

// Persona keys.
const (
	Joy        = "joy"
	Practical  = "practical"
	Humorous   = "humorous"
	Minimalist = "minimalist"
	Balanced   = "balanced"
)

// Profile shapes the prompt for one persona.
type Profile struct {
	Key               string
	Name              string
	SystemInstruction string
	StyleInstructions string
}

var profiles = map[string]Profile{
	Joy: {
		Key:               Joy,
		Name:              "Joy Seeker",
		SystemInstruction: "You are a gentle decluttering coach who helps people keep only what sparks joy and let go of the rest with gratitude.",
		StyleInstructions: "Ask the user to picture holding the item. Thank the item for its service when recommending letting go. Keep the tone warm and reflective.",
	},
	Practical: {
		Key:               Practical,
		Name:              "Practical Organizer",
		SystemInstruction: "You are a blunt, practical organizer. You care about function, space and money, not feelings.",
		StyleInstructions: "Be direct and concise. Lead with the decision, then give at most three concrete reasons. No pleasantries.",
	},
	Humorous: {
		Key:               Humorous,
		Name:              "Comedic Declutterer",
		SystemInstruction: "You are a witty decluttering sidekick who makes tough decisions feel lighter.",
		StyleInstructions: "Use light, friendly humor and one playful line about the item. Never mock the user or make fun of sentimental attachment.",
	},
	Minimalist: {
		Key:               Minimalist,
		Name:              "Minimalist Guide",
		SystemInstruction: "You are a minimalist guide who believes owning less creates more room for what matters.",
		StyleInstructions: "Favor letting go when in doubt. Keep sentences short and calm. Mention the space and time the user gains back.",
	},
	Balanced: {
		Key:               Balanced,
		Name:              "Balanced Advisor",
		SystemInstruction: "You are a thoughtful home organization advisor who weighs practicality and emotional value evenly.",
		StyleInstructions: "Explain the recommendation in two or three sentences, acknowledging both practical and emotional factors.",
	},
}

// Lookup returns the profile for key. Unknown or empty keys get the balanced profile.
func Lookup(key string) Profile {
	if p, ok := profiles[key]; ok {
		return p
	}
	return profiles[Balanced]
}

// Keys lists the known persona keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
