// Package report aggregates a batch of analyses into summary statistics.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/spamurai/spamurai/internal/core"
)

// topKeywordLimit caps how many phishing keywords a summary lists.
const topKeywordLimit = 10

// KeywordCount is one phishing keyword and the number of analyzed texts it
// appeared in.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Summary is the aggregate view over one batch of analyses.
type Summary struct {
	TotalEmails    int            `json:"total_emails"`
	SpamCount      int            `json:"spam_count"`
	HamCount       int            `json:"ham_count"`
	PhishingCount  int            `json:"phishing_count"`
	SpamPercentage float64        `json:"spam_percentage"`
	HamPercentage  float64        `json:"ham_percentage"`
	TopKeywords    []KeywordCount `json:"top_keywords"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// Summarize builds a summary over a batch of analyses. Analyses that failed
// to classify (unknown or error) count toward the total but toward neither
// the spam nor the ham side.
func Summarize(results []*core.TextAnalysis) *Summary {
	summary := &Summary{
		TotalEmails: len(results),
		TopKeywords: []KeywordCount{},
		GeneratedAt: time.Now(),
	}

	keywordCounts := make(map[string]int)
	for _, r := range results {
		if r == nil {
			continue
		}
		switch r.Classification {
		case core.LabelSpam:
			summary.SpamCount++
		case core.LabelHam:
			summary.HamCount++
		}
		// Any matched keyword counts as a phishing indicator here, even when
		// the per-email verdict needs two distinct matches.
		if len(r.Phishing.Keywords) > 0 {
			summary.PhishingCount++
		}
		for _, kw := range r.Phishing.Keywords {
			keywordCounts[kw]++
		}
	}

	if summary.TotalEmails > 0 {
		summary.SpamPercentage = round2(float64(summary.SpamCount) / float64(summary.TotalEmails) * 100)
		summary.HamPercentage = round2(float64(summary.HamCount) / float64(summary.TotalEmails) * 100)
	}

	summary.TopKeywords = topKeywords(keywordCounts, topKeywordLimit)
	return summary
}

// topKeywords returns the n most frequent keywords, ties broken
// alphabetically so the output is stable.
func topKeywords(counts map[string]int, n int) []KeywordCount {
	ranked := make([]KeywordCount, 0, len(counts))
	for kw, count := range counts {
		ranked = append(ranked, KeywordCount{Keyword: kw, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
