package llm

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"github.com/thunderdanp/declutter-sub000/internal/common"
	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// ExtractJSONObject returns the span from the first '{' to the last '}', or
// the trimmed text when there is no such span.
func ExtractJSONObject(text string) string {
	text = cleanMarkdownWrapper(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}

// ParseImageAnalysis decodes an image-understanding reply. A category missing
// from vocabulary is replaced by defaultCategory; matching ignores case and
// returns the vocabulary's spelling.
func ParseImageAnalysis(text string, vocabulary []string, defaultCategory string) (model.ImageAnalysis, error) {
	var analysis model.ImageAnalysis

	err := json.Unmarshal([]byte(ExtractJSONObject(text)), &analysis)
	if err != nil {
		if wholeErr := json.Unmarshal([]byte(strings.TrimSpace(text)), &analysis); wholeErr != nil {
			return model.ImageAnalysis{}, &common.ResponseParseError{Err: err, Raw: text}
		}
	}

	if analysis.Name == "" && analysis.Description == "" {
		return model.ImageAnalysis{}, &common.ResponseParseError{Err: errors.New("reply has no name or description"), Raw: text}
	}

	analysis.Name = strings.TrimSpace(analysis.Name)
	analysis.Description = strings.TrimSpace(analysis.Description)
	analysis.Category = MatchCategory(analysis.Category, vocabulary, defaultCategory)

	return analysis, nil
}

// MatchCategory returns the vocabulary entry equal to category ignoring case,
// or defaultCategory.
func MatchCategory(category string, vocabulary []string, defaultCategory string) string {
	category = strings.TrimSpace(category)
	for _, c := range vocabulary {
		if strings.EqualFold(c, category) {
			return c
		}
	}
	return defaultCategory
}

// cleanMarkdownWrapper strips a ```json fence around a reply.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
