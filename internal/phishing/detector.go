// Package phishing implements the lexical phishing-phrase scan.
package phishing

import (
	"strings"

	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// DefaultPhrases is the built-in phishing vocabulary: explicit fraud language
// plus the pressure-marketing phrases the spam model tends to under-weight.
var DefaultPhrases = []string{
	"verify", "update your account", "password",
	"bank", "click here", "login now", "security alert",
	"suspended", "verify identity", "payment failed", "account locked",
	"additional income", "be your own boss", "best price", "cash bonus",
	"consolidate debt", "financial freedom", "free consultation",
	"full refund", "get out of debt", "get paid", "giveaway",
	"guaranteed", "increase sales", "increase traffic", "incredible deal",
	"lower rates", "lowest price", "make money", "miracle", "once in a lifetime",
	"potential earnings", "prize", "promise", "pure profit", "risk-free",
	"satisfaction guaranteed", "save big money", "save up to", "special promotion",
	"urgent", "winner", "you are a winner", "you have been selected",
}

// Detector scans free text for phishing-indicative phrases. Matching is
// case-insensitive substring containment, deliberately permissive: no
// tokenization, no word boundaries.
type Detector struct {
	phrases       []string
	minIndicators int
	logger        *zap.Logger
}

// NewDetector creates a new detector. An empty phrase list selects
// DefaultPhrases; minIndicators below 1 defaults to 2 distinct matches.
func NewDetector(phrases []string, minIndicators int, logger *zap.Logger) *Detector {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	if minIndicators < 1 {
		minIndicators = 2
	}

	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			normalized = append(normalized, p)
		}
	}

	if logger != nil {
		logger.Debug("Initialized phishing detector",
			zap.Int("phrases", len(normalized)),
			zap.Int("min_indicators", minIndicators))
	}

	return &Detector{
		phrases:       normalized,
		minIndicators: minIndicators,
		logger:        logger,
	}
}

// Detect returns the matched phrases and whether the text crosses the
// phishing threshold. Pure function of the input text.
func (d *Detector) Detect(text string) core.PhishingIndicator {
	indicator := core.PhishingIndicator{Keywords: []string{}}
	if text == "" {
		return indicator
	}

	lower := strings.ToLower(text)
	seen := make(map[string]struct{}, d.minIndicators)
	for _, phrase := range d.phrases {
		if _, dup := seen[phrase]; dup {
			continue
		}
		if strings.Contains(lower, phrase) {
			seen[phrase] = struct{}{}
			indicator.Keywords = append(indicator.Keywords, phrase)
		}
	}

	indicator.IsPhishing = len(indicator.Keywords) >= d.minIndicators
	return indicator
}
