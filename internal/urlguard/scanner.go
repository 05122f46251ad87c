package urlguard

import (
	"context"
	"regexp"

	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// urlPattern is intentionally loose: scheme plus a run of non-whitespace.
var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// ExtractURLs returns the HTTP/HTTPS URLs found in text, de-duplicated by
// exact string equality in first-seen order.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}

	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	urls := make([]string, 0, len(matches))
	for _, u := range matches {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// Scanner runs the URL classifier over every distinct URL in a text, exactly
// once per URL per invocation. It holds no state between calls.
type Scanner struct {
	classifier core.URLClassifier
	logger     *zap.Logger
}

// NewScanner creates a new URL scanner
func NewScanner(classifier core.URLClassifier, logger *zap.Logger) *Scanner {
	return &Scanner{
		classifier: classifier,
		logger:     logger,
	}
}

// ScanText extracts and classifies the URLs in text, preserving first-seen
// order. Text without URLs yields an empty slice.
func (s *Scanner) ScanText(ctx context.Context, text string) []core.URLRiskAssessment {
	urls := ExtractURLs(text)
	assessments := make([]core.URLRiskAssessment, 0, len(urls))
	for _, u := range urls {
		assessments = append(assessments, s.classifier.Classify(ctx, u))
	}

	if len(assessments) > 0 {
		s.logger.Debug("Scanned text for URLs", zap.Int("distinct_urls", len(assessments)))
	}
	return assessments
}
