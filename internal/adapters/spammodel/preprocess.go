package spammodel

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	linkPattern       = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	digitPattern      = regexp.MustCompile(`\d+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanText normalizes raw email text the same way the training pipeline did:
// lowercase, URLs stripped, digits stripped, punctuation stripped, whitespace
// collapsed. Prediction must see exactly what training saw.
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = linkPattern.ReplaceAllString(text, "")
	text = digitPattern.ReplaceAllString(text, "")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	text = whitespacePattern.ReplaceAllString(b.String(), " ")

	return strings.TrimSpace(text)
}

// tokenize splits cleaned text into the unigram tokens the vocabulary is
// keyed by.
func tokenize(cleaned string) []string {
	return strings.Fields(cleaned)
}
