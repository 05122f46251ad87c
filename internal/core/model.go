package core

import (
	"time"
)

// WarningLevel is the graded severity shown to the end user. It is distinct
// from the binary spam/ham classification label: ham content can still carry
// a high warning because of URL risk.
type WarningLevel string

const (
	WarningLow    WarningLevel = "low"
	WarningMedium WarningLevel = "medium"
	WarningHigh   WarningLevel = "high"
)

// RiskLevel is the per-URL severity bucket derived from model confidence.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Classification labels produced by the aggregator.
const (
	LabelSpam    = "spam"
	LabelHam     = "ham"
	LabelUnknown = "unknown"
	LabelError   = "error"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// SpamScore is the raw output of a spam scorer: the model's label and the
// spam/ham probability pair in [0,1].
type SpamScore struct {
	Label    string
	SpamProb float64
	HamProb  float64
	Model    string
}

// PhishingIndicator is the result of the keyword scan, carrying the embedded
// URL risk assessments for the same text.
type PhishingIndicator struct {
	IsPhishing bool                `json:"is_phishing"`
	Keywords   []string            `json:"keywords"`
	URLRisks   []URLRiskAssessment `json:"url_risks"`
}

// URLRiskAssessment is the verdict for a single URL.
type URLRiskAssessment struct {
	URL        string    `json:"url"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence,omitempty"`
	RiskLevel  RiskLevel `json:"risk_level,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// TextAnalysis is the aggregation snapshot for one piece of text. It is
// recomputed fresh for every input and never mutated after construction.
type TextAnalysis struct {
	Classification  string            `json:"classification"`
	SpamProbability float64           `json:"spam_probability"`
	HamProbability  float64           `json:"ham_probability"`
	Phishing        PhishingIndicator `json:"phishing_indicators"`
	WarningLevel    WarningLevel      `json:"warning_level"`
	WarningMessage  string            `json:"warning_message"`
	ModelUsed       string            `json:"model_used,omitempty"`
	Error           string            `json:"error,omitempty"`
	AnalyzedAt      time.Time         `json:"analyzed_at"`
}

// URLVerdictEntry is a cached URL classification.
type URLVerdictEntry struct {
	URL        string
	Label      string
	Confidence float64
	RiskLevel  RiskLevel
	LastSeen   time.Time
	ExpiresAt  time.Time
}
