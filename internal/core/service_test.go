package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubScorer struct {
	spamProb float64
	err      error
}

func (s *stubScorer) ScoreText(ctx context.Context, text string) (*SpamScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	label := LabelHam
	if s.spamProb >= 0.9 {
		label = LabelSpam
	}
	return &SpamScore{
		Label:    label,
		SpamProb: s.spamProb,
		HamProb:  1 - s.spamProb,
		Model:    "naive-bayes",
	}, nil
}

type stubDetector struct {
	isPhishing bool
	keywords   []string
}

func (d *stubDetector) Detect(text string) PhishingIndicator {
	kws := d.keywords
	if kws == nil {
		kws = []string{}
	}
	return PhishingIndicator{IsPhishing: d.isPhishing, Keywords: kws}
}

type stubScanner struct {
	risks []URLRiskAssessment
}

func (s *stubScanner) ScanText(ctx context.Context, text string) []URLRiskAssessment {
	if s.risks == nil {
		return []URLRiskAssessment{}
	}
	return s.risks
}

type countingURLClassifier struct {
	calls      int
	assessment URLRiskAssessment
}

func (c *countingURLClassifier) Classify(ctx context.Context, rawURL string) URLRiskAssessment {
	c.calls++
	a := c.assessment
	a.URL = rawURL
	return a
}

type mapCache struct {
	entries map[string]*URLVerdictEntry
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]*URLVerdictEntry)}
}

func (c *mapCache) Get(ctx context.Context, url string) (*URLVerdictEntry, error) {
	entry, ok := c.entries[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (c *mapCache) Set(ctx context.Context, entry *URLVerdictEntry) error {
	c.entries[entry.URL] = entry
	return nil
}

func (c *mapCache) Delete(ctx context.Context, url string) error {
	delete(c.entries, url)
	return nil
}

func (c *mapCache) Cleanup(ctx context.Context) error { return nil }

func newService(scorer SpamScorer, detector PhishingDetector, scanner URLScanner) *AnalyzerService {
	return NewAnalyzerService(scorer, detector, scanner, nil, nil, false, 0, zap.NewNop())
}

func riskOf(level RiskLevel) []URLRiskAssessment {
	return []URLRiskAssessment{{URL: "http://x.example", Label: "phishing", Confidence: 0.9, RiskLevel: level}}
}

func TestAnalyzeText_WarningCascade(t *testing.T) {
	tests := []struct {
		name               string
		spamProb           float64
		isPhishing         bool
		risks              []URLRiskAssessment
		wantClassification string
		wantLevel          WarningLevel
		wantMessage        string
	}{
		{
			name:               "high spam dominates",
			spamProb:           0.95,
			wantClassification: LabelSpam,
			wantLevel:          WarningHigh,
			wantMessage:        msgSpamHigh,
		},
		{
			name:               "spam label boundary at 90",
			spamProb:           0.90,
			wantClassification: LabelSpam,
			wantLevel:          WarningHigh,
			wantMessage:        msgSpamHigh,
		},
		{
			name:               "high url risk escalates ham",
			spamProb:           0.40,
			risks:              riskOf(RiskHigh),
			wantClassification: LabelHam,
			wantLevel:          WarningHigh,
			wantMessage:        msgPhishingHigh,
		},
		{
			name:               "phishing plus moderate spam escalates",
			spamProb:           0.50,
			isPhishing:         true,
			wantClassification: LabelHam,
			wantLevel:          WarningHigh,
			wantMessage:        msgPhishingHigh,
		},
		{
			name:               "phishing with low spam stays medium",
			spamProb:           0.20,
			isPhishing:         true,
			wantClassification: LabelHam,
			wantLevel:          WarningMedium,
			wantMessage:        msgSuspicious,
		},
		{
			name:               "elevated spam alone is medium",
			spamProb:           0.75,
			wantClassification: LabelHam,
			wantLevel:          WarningMedium,
			wantMessage:        msgSuspicious,
		},
		{
			name:               "suspicion boundary at 70",
			spamProb:           0.70,
			wantClassification: LabelHam,
			wantLevel:          WarningMedium,
			wantMessage:        msgSuspicious,
		},
		{
			name:               "medium url risk alone is medium",
			spamProb:           0.10,
			risks:              riskOf(RiskMedium),
			wantClassification: LabelHam,
			wantLevel:          WarningMedium,
			wantMessage:        msgSuspicious,
		},
		{
			name:               "all quiet is low",
			spamProb:           0.10,
			wantClassification: LabelHam,
			wantLevel:          WarningLow,
			wantMessage:        msgSafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(
				&stubScorer{spamProb: tt.spamProb},
				&stubDetector{isPhishing: tt.isPhishing},
				&stubScanner{risks: tt.risks},
			)

			got := svc.AnalyzeText(context.Background(), "some text")

			if got.Classification != tt.wantClassification {
				t.Errorf("Classification: got %s, want %s", got.Classification, tt.wantClassification)
			}
			if got.WarningLevel != tt.wantLevel {
				t.Errorf("WarningLevel: got %s, want %s", got.WarningLevel, tt.wantLevel)
			}
			if got.WarningMessage != tt.wantMessage {
				t.Errorf("WarningMessage: got %q, want %q", got.WarningMessage, tt.wantMessage)
			}
		})
	}
}

func TestAnalyzeText_ProbabilitiesRoundedAndComplementary(t *testing.T) {
	svc := newService(&stubScorer{spamProb: 0.87654}, &stubDetector{}, &stubScanner{})

	got := svc.AnalyzeText(context.Background(), "text")

	if got.SpamProbability != 87.7 {
		t.Errorf("SpamProbability: got %v, want 87.7", got.SpamProbability)
	}
	if got.HamProbability != 12.3 {
		t.Errorf("HamProbability: got %v, want 12.3", got.HamProbability)
	}
	if sum := got.SpamProbability + got.HamProbability; math.Abs(sum-100) > 0.2 {
		t.Errorf("probabilities should sum to ~100, got %v", sum)
	}
}

func TestAnalyzeText_NilScorer(t *testing.T) {
	svc := newService(nil, &stubDetector{isPhishing: true}, &stubScanner{risks: riskOf(RiskMedium)})

	got := svc.AnalyzeText(context.Background(), "text")

	if got.Classification != LabelUnknown {
		t.Errorf("Classification: got %s, want unknown", got.Classification)
	}
	if got.Error == "" {
		t.Error("expected Error to report the missing model")
	}
	// The remaining signals still drive the warning.
	if got.WarningLevel != WarningMedium {
		t.Errorf("WarningLevel: got %s, want medium", got.WarningLevel)
	}
}

func TestAnalyzeText_ScorerFailure(t *testing.T) {
	svc := newService(&stubScorer{err: errors.New("inference failed")}, &stubDetector{}, &stubScanner{})

	got := svc.AnalyzeText(context.Background(), "text")

	if got.Classification != LabelError {
		t.Errorf("Classification: got %s, want error", got.Classification)
	}
	if got.Error != "inference failed" {
		t.Errorf("Error: got %q, want inference failed", got.Error)
	}
	if got.WarningLevel != WarningLow {
		t.Errorf("WarningLevel: got %s, want low with no other signals", got.WarningLevel)
	}
}

func TestAnalyzeText_EmptyText(t *testing.T) {
	svc := newService(&stubScorer{spamProb: 0.95}, &stubDetector{}, &stubScanner{})

	got := svc.AnalyzeText(context.Background(), "")

	// An empty input is still scored; nothing panics and the phishing scan
	// reports no indicators.
	if got.Phishing.IsPhishing {
		t.Error("empty text must not be phishing")
	}
	if len(got.Phishing.URLRisks) != 0 {
		t.Errorf("URLRisks: got %d, want 0", len(got.Phishing.URLRisks))
	}
}

func TestClassifyURL_CacheShortCircuits(t *testing.T) {
	classifier := &countingURLClassifier{
		assessment: URLRiskAssessment{Label: "benign", Confidence: 0.95, RiskLevel: RiskLow},
	}
	svc := NewAnalyzerService(nil, &stubDetector{}, &stubScanner{}, classifier,
		newMapCache(), true, time.Hour, zap.NewNop())

	first := svc.ClassifyURL(context.Background(), "https://a.example")
	second := svc.ClassifyURL(context.Background(), "https://a.example")

	if classifier.calls != 1 {
		t.Errorf("classifier calls: got %d, want 1", classifier.calls)
	}
	if first.Label != second.Label || first.RiskLevel != second.RiskLevel || first.Confidence != second.Confidence {
		t.Errorf("cached verdict differs: first %+v, second %+v", first, second)
	}
}

func TestClassifyURL_FailedAssessmentsNotCached(t *testing.T) {
	classifier := &countingURLClassifier{
		assessment: URLRiskAssessment{Label: LabelError, Err: "model failure"},
	}
	svc := NewAnalyzerService(nil, &stubDetector{}, &stubScanner{}, classifier,
		newMapCache(), true, time.Hour, zap.NewNop())

	svc.ClassifyURL(context.Background(), "https://a.example")
	svc.ClassifyURL(context.Background(), "https://a.example")

	if classifier.calls != 2 {
		t.Errorf("classifier calls: got %d, want 2 when assessments fail", classifier.calls)
	}
}

func TestClassifyURL_CacheDisabled(t *testing.T) {
	classifier := &countingURLClassifier{
		assessment: URLRiskAssessment{Label: "benign", Confidence: 1, RiskLevel: RiskLow},
	}
	svc := NewAnalyzerService(nil, &stubDetector{}, &stubScanner{}, classifier,
		newMapCache(), false, time.Hour, zap.NewNop())

	svc.ClassifyURL(context.Background(), "https://a.example")
	svc.ClassifyURL(context.Background(), "https://a.example")

	if classifier.calls != 2 {
		t.Errorf("classifier calls: got %d, want 2 with cache disabled", classifier.calls)
	}
}
