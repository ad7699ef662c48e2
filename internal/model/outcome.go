// Package model defines the core data structures for the declutter application.
package model

import (
	"fmt"
	"strings"
)

// Outcome is one of the dispositions a recommendation can resolve to.
type Outcome string

// Outcome constants.
const (
	OutcomeKeep       Outcome = "keep"
	OutcomeAccessible Outcome = "accessible"
	OutcomeStorage    Outcome = "storage"
	OutcomeSell       Outcome = "sell"
	OutcomeDonate     Outcome = "donate"
	OutcomeDiscard    Outcome = "discard"
)

// Outcomes lists every outcome in canonical order.
var Outcomes = []Outcome{
	OutcomeKeep,
	OutcomeAccessible,
	OutcomeStorage,
	OutcomeSell,
	OutcomeDonate,
	OutcomeDiscard,
}

// IsValid reports whether o is a known outcome.
func (o Outcome) IsValid() bool {
	for _, known := range Outcomes {
		if o == known {
			return true
		}
	}
	return false
}

// IsRetention reports whether the outcome keeps the item in the household.
func (o Outcome) IsRetention() bool {
	return o == OutcomeKeep || o == OutcomeAccessible || o == OutcomeStorage
}

// IsDisposal reports whether the outcome removes the item from the household.
func (o Outcome) IsDisposal() bool {
	return o == OutcomeSell || o == OutcomeDonate || o == OutcomeDiscard
}

// Label returns a human-readable label for the outcome.
func (o Outcome) Label() string {
	switch o {
	case OutcomeKeep:
		return "Keep"
	case OutcomeAccessible:
		return "Keep somewhere accessible"
	case OutcomeStorage:
		return "Move to storage"
	case OutcomeSell:
		return "Sell"
	case OutcomeDonate:
		return "Donate"
	case OutcomeDiscard:
		return "Discard"
	default:
		return string(o)
	}
}

// ParseOutcome normalizes s into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	if !o.IsValid() {
		return "", fmt.Errorf("unknown outcome %q", s)
	}
	return o, nil
}
