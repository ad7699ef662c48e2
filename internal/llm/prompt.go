package llm

import (
	"fmt"
	"strings"
)

// ImagePrompt returns the instruction sent alongside an item photo. A
// non-empty PromptOverride replaces the built-in wording.
func ImagePrompt(req ImageRequest) string {
	if req.PromptOverride != "" {
		return req.PromptOverride
	}

	var sb strings.Builder
	sb.WriteString("Identify the main household item in this photo.\n")
	sb.WriteString("Respond with only a JSON object, no other text, in this exact format:\n")
	sb.WriteString(`{"name": "short item name", "description": "one or two sentences describing the item and its visible condition", "category": "one category from the list"}`)
	sb.WriteString("\n")
	if len(req.Categories) > 0 {
		sb.WriteString(fmt.Sprintf("\nCategories: %s\n", strings.Join(req.Categories, ", ")))
	}
	return sb.String()
}
