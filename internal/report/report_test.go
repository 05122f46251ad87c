package report

import (
	"reflect"
	"testing"

	"github.com/spamurai/spamurai/internal/core"
)

func analysis(classification string, phishing bool, keywords ...string) *core.TextAnalysis {
	if keywords == nil {
		keywords = []string{}
	}
	return &core.TextAnalysis{
		Classification: classification,
		Phishing: core.PhishingIndicator{
			IsPhishing: phishing,
			Keywords:   keywords,
		},
	}
}

func TestSummarize(t *testing.T) {
	results := []*core.TextAnalysis{
		analysis(core.LabelSpam, true, "verify", "password"),
		analysis(core.LabelSpam, false, "verify"),
		analysis(core.LabelHam, false),
		analysis(core.LabelUnknown, false),
	}

	got := Summarize(results)

	if got.TotalEmails != 4 {
		t.Errorf("TotalEmails: got %d, want 4", got.TotalEmails)
	}
	if got.SpamCount != 2 || got.HamCount != 1 {
		t.Errorf("counts: got %d spam / %d ham, want 2/1", got.SpamCount, got.HamCount)
	}
	// A single matched keyword is an indicator for reporting purposes even
	// though the per-email verdict needs two.
	if got.PhishingCount != 2 {
		t.Errorf("PhishingCount: got %d, want 2", got.PhishingCount)
	}
	if got.SpamPercentage != 50.0 {
		t.Errorf("SpamPercentage: got %v, want 50.0", got.SpamPercentage)
	}
	if got.HamPercentage != 25.0 {
		t.Errorf("HamPercentage: got %v, want 25.0", got.HamPercentage)
	}

	wantKeywords := []KeywordCount{
		{Keyword: "verify", Count: 2},
		{Keyword: "password", Count: 1},
	}
	if !reflect.DeepEqual(got.TopKeywords, wantKeywords) {
		t.Errorf("TopKeywords: got %v, want %v", got.TopKeywords, wantKeywords)
	}
	if got.GeneratedAt.IsZero() {
		t.Error("GeneratedAt must be set")
	}
}

func TestSummarize_PercentagesRoundedToTwoDecimals(t *testing.T) {
	got := Summarize([]*core.TextAnalysis{
		analysis(core.LabelSpam, false),
		analysis(core.LabelHam, false),
		analysis(core.LabelHam, false),
	})

	if got.SpamPercentage != 33.33 {
		t.Errorf("SpamPercentage: got %v, want 33.33", got.SpamPercentage)
	}
	if got.HamPercentage != 66.67 {
		t.Errorf("HamPercentage: got %v, want 66.67", got.HamPercentage)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)

	if got.TotalEmails != 0 || got.SpamPercentage != 0 || got.HamPercentage != 0 {
		t.Errorf("empty batch: got %+v", got)
	}
	if got.TopKeywords == nil {
		t.Error("TopKeywords must be an empty slice, not nil")
	}
}

func TestSummarize_NilEntriesSkipped(t *testing.T) {
	got := Summarize([]*core.TextAnalysis{nil, analysis(core.LabelHam, false)})

	if got.TotalEmails != 2 {
		t.Errorf("TotalEmails: got %d, want 2", got.TotalEmails)
	}
	if got.HamCount != 1 {
		t.Errorf("HamCount: got %d, want 1", got.HamCount)
	}
}

func TestTopKeywords_LimitAndTies(t *testing.T) {
	counts := map[string]int{
		"b": 2, "a": 2, "c": 1,
	}

	got := topKeywords(counts, 2)

	want := []KeywordCount{
		{Keyword: "a", Count: 2},
		{Keyword: "b", Count: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("topKeywords: got %v, want %v", got, want)
	}
}
