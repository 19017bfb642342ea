package scorer

import (
	"strings"

	"github.com/dshills/cmdrecall/internal/query"
)

// LexicalScore rates a command against extracted query keywords without any
// vector backend. Base score is the fraction of keywords present in the
// normalized command text, plus 0.2 for each adjacent keyword pair found as
// a phrase, multiplied by 1.5 when every keyword matches. The result is
// clamped to 1.0.
func LexicalScore(command string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	text := query.Normalize(command)

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	if matches == 0 {
		return 0.0
	}

	score := float64(matches) / float64(len(keywords))

	for i := 0; i+1 < len(keywords); i++ {
		if strings.Contains(text, keywords[i]+" "+keywords[i+1]) {
			score += 0.2
		}
	}

	if matches == len(keywords) {
		score *= 1.5
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
