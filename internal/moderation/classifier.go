package moderation

import (
	"regexp"
	"strings"
)

// Unicode-aware: letters and digits in any script survive normalization.
var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Classifier is a pure substring matcher over a normalized message body.
// Matching is deliberately word-boundary-insensitive: "egg" flags
// "eggplant" too. That is the configured policy, not an accident.
type Classifier struct {
	terms []string
}

func NewClassifier(terms []string) *Classifier {
	normalized := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		normalized = append(normalized, term)
	}
	return &Classifier{terms: normalized}
}

// Flags reports whether text contains any banned term after stripping
// punctuation and case-folding. No side effects.
func (c *Classifier) Flags(text string) bool {
	content := punctuation.ReplaceAllString(strings.ToLower(text), "")
	for _, term := range c.terms {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}
