package core

import (
	"context"
	"time"

	"github.com/spamurai/spamurai/internal/features"
)

// SpamScorer produces a spam/ham probability pair for free text.
type SpamScorer interface {
	// ScoreText scores a single piece of text
	ScoreText(ctx context.Context, text string) (*SpamScore, error)
}

// URLModel is the pre-trained URL classification artifact. Implementations
// that can expose a per-class probability distribution additionally implement
// ProbaURLModel; callers upgrade via type assertion.
type URLModel interface {
	// Predict returns the single predicted label for a feature record
	Predict(rec *features.URLFeatureRecord) (string, error)
}

// ProbaURLModel is the probability-capable variant of URLModel.
type ProbaURLModel interface {
	URLModel

	// PredictProba returns the class labels and the aligned probability vector
	PredictProba(rec *features.URLFeatureRecord) (labels []string, probs []float64, err error)
}

// URLClassifier turns a raw URL into a risk assessment. It never returns an
// error; failures are captured inside the assessment.
type URLClassifier interface {
	Classify(ctx context.Context, rawURL string) URLRiskAssessment
}

// URLScanner finds the URLs in free text and assesses each distinct one once.
type URLScanner interface {
	ScanText(ctx context.Context, text string) []URLRiskAssessment
}

// PhishingDetector scans free text for phishing-indicative phrases.
type PhishingDetector interface {
	Detect(text string) PhishingIndicator
}

// AnalysisObserver receives completed verdicts, typically for metrics export.
type AnalysisObserver interface {
	// ObserveAnalysis records one completed text analysis
	ObserveAnalysis(analysis *TextAnalysis, elapsed time.Duration)

	// ObserveURLVerdict records one standalone URL assessment
	ObserveURLVerdict(assessment *URLRiskAssessment)
}

// VerdictCache defines the interface for caching URL verdicts
type VerdictCache interface {
	// Get retrieves a cached verdict for a URL
	Get(ctx context.Context, url string) (*URLVerdictEntry, error)

	// Set stores a verdict entry
	Set(ctx context.Context, entry *URLVerdictEntry) error

	// Delete removes a verdict entry
	Delete(ctx context.Context, url string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
