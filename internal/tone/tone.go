// Package tone detects the emotional register of an item's notes so generated
// explanations can adapt their voice.
package tone

import (
	"strings"

	"github.com/thunderdanp/declutter-sub000/internal/model"
)

// Keywords holds the fixed keyword list for each non-neutral tone.
var Keywords = map[model.Tone][]string{
	model.ToneSentimental: {
		"grandma", "grandpa", "grandmother", "grandfather", "mom", "dad",
		"mother", "father", "memory", "memories", "gift", "inherited",
		"heirloom", "wedding", "childhood", "remind", "passed away",
		"keepsake", "nostalgi", "baby",
	},
	model.ToneFrustrated: {
		"clutter", "annoying", "hate", "tired of", "sick of", "never use",
		"waste", "junk", "takes up", "in the way", "frustrat", "ugh",
		"overwhelm", "too much stuff",
	},
	model.ToneEnthusiastic: {
		"love", "excited", "amazing", "awesome", "favorite", "favourite",
		"can't wait", "fantastic", "wonderful", "so fun", "adore",
	},
}

// Priority breaks ties between tones with equal counts; earlier wins.
var Priority = []model.Tone{
	model.ToneSentimental,
	model.ToneFrustrated,
	model.ToneEnthusiastic,
}

// Instructions tells prose generation how to adapt to each tone.
var Instructions = map[model.Tone]string{
	model.ToneSentimental:  "The user feels emotionally attached to this item. Be gentle, acknowledge the memories it holds, and never rush them.",
	model.ToneFrustrated:   "The user is frustrated with clutter. Be direct and solution-focused, and keep the explanation short.",
	model.ToneEnthusiastic: "The user is excited about this item. Match their energetic tone while staying honest about the recommendation.",
	model.ToneNeutral:      "Use a warm, balanced tone.",
}

// Result is the classified tone plus its prose instruction.
type Result struct {
	Counts      map[model.Tone]int
	Tone        model.Tone
	Instruction string
}

// Classify maps free-text notes to a tone. Empty text is neutral.
func Classify(text string) Result {
	lower := strings.ToLower(text)
	counts := make(map[model.Tone]int, len(Priority))

	if strings.TrimSpace(lower) != "" {
		for _, t := range Priority {
			for _, kw := range Keywords[t] {
				counts[t] += strings.Count(lower, kw)
			}
		}
	}

	winner := model.ToneNeutral
	best := 0
	// Strictly greater keeps the earlier tone on ties.
	for _, t := range Priority {
		if counts[t] > best {
			best = counts[t]
			winner = t
		}
	}

	return Result{
		Tone:        winner,
		Instruction: Instructions[winner],
		Counts:      counts,
	}
}
