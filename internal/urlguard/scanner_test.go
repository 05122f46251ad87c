package urlguard

import (
	"context"
	"reflect"
	"testing"

	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// countingClassifier records how often each URL is classified.
type countingClassifier struct {
	calls map[string]int
}

func (c *countingClassifier) Classify(ctx context.Context, rawURL string) core.URLRiskAssessment {
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[rawURL]++
	return core.URLRiskAssessment{URL: rawURL, Label: "benign", Confidence: 1, RiskLevel: core.RiskLow}
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no urls",
			text: "just a plain sentence",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "single url",
			text: "see https://example.com/page for details",
			want: []string{"https://example.com/page"},
		},
		{
			name: "mixed schemes and case",
			text: "HTTP://a.example and https://b.example",
			want: []string{"HTTP://a.example", "https://b.example"},
		},
		{
			name: "exact duplicates collapse in first-seen order",
			text: "https://b.example https://a.example https://b.example",
			want: []string{"https://b.example", "https://a.example"},
		},
		{
			name: "trailing path variants stay distinct",
			text: "https://a.example https://a.example/",
			want: []string{"https://a.example", "https://a.example/"},
		},
		{
			name: "ftp is ignored",
			text: "ftp://files.example/archive",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURLs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractURLs(%q): got %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScanText_ClassifiesEachDistinctURLOnce(t *testing.T) {
	classifier := &countingClassifier{}
	s := NewScanner(classifier, zap.NewNop())

	text := "https://a.example then https://b.example then https://a.example again"
	got := s.ScanText(context.Background(), text)

	if len(got) != 2 {
		t.Fatalf("assessments: got %d, want 2", len(got))
	}
	if got[0].URL != "https://a.example" || got[1].URL != "https://b.example" {
		t.Errorf("order: got [%s %s], want first-seen order", got[0].URL, got[1].URL)
	}
	for url, n := range classifier.calls {
		if n != 1 {
			t.Errorf("classifier called %d times for %s, want 1", n, url)
		}
	}
}

func TestScanText_NoURLsYieldsEmptySlice(t *testing.T) {
	s := NewScanner(&countingClassifier{}, zap.NewNop())

	got := s.ScanText(context.Background(), "no links here")
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("assessments: got %d, want 0", len(got))
	}
}
