package core

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// Warning thresholds, in percent. The spam/ham label uses the 90 cutoff only;
// the fused warning level escalates earlier (50/70) when other signals agree.
const (
	spamLabelThreshold = 90.0
	phishingEscalation = 50.0
	suspicionThreshold = 70.0
)

// User-facing warning messages, one per cascade branch.
const (
	msgSpamHigh     = "Potential spam or phishing detected. Proceed with extreme caution."
	msgPhishingHigh = "Potential phishing risk detected. Proceed with extreme caution."
	msgSuspicious   = "Some suspicious signals detected. Review carefully."
	msgSafe         = "Looks safe overall. No major issues detected."
)

// AnalyzerService fuses the spam score, the phishing keyword scan and the
// per-URL risk verdicts into a single graded warning. All scoring state is
// read-only after construction, so concurrent calls are safe.
type AnalyzerService struct {
	scorer       SpamScorer
	detector     PhishingDetector
	scanner      URLScanner
	classifier   URLClassifier
	cache        VerdictCache
	cacheEnabled bool
	cacheTTL     time.Duration
	observer     AnalysisObserver
	logger       *zap.Logger
}

// NewAnalyzerService creates a new analyzer service. A nil scorer or a nil
// classifier model degrades the corresponding signal instead of failing.
func NewAnalyzerService(
	scorer SpamScorer,
	detector PhishingDetector,
	scanner URLScanner,
	classifier URLClassifier,
	cache VerdictCache,
	cacheEnabled bool,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AnalyzerService {
	return &AnalyzerService{
		scorer:       scorer,
		detector:     detector,
		scanner:      scanner,
		classifier:   classifier,
		cache:        cache,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// AnalyzeText analyzes a piece of free text and returns the fused verdict.
// It never returns an error: a failed or missing spam model is reported in
// the Classification field and the remaining signals still populate the
// warning level.
func (s *AnalyzerService) AnalyzeText(ctx context.Context, text string) *TextAnalysis {
	started := time.Now()
	analysis := &TextAnalysis{
		Classification: LabelUnknown,
		AnalyzedAt:     started,
	}

	if s.scorer == nil {
		analysis.Error = "spam model not loaded"
	} else {
		score, err := s.scorer.ScoreText(ctx, text)
		if err != nil {
			s.logger.Warn("Spam scoring failed", zap.Error(err))
			analysis.Classification = LabelError
			analysis.Error = err.Error()
		} else {
			analysis.SpamProbability = roundPercent(score.SpamProb)
			analysis.HamProbability = roundPercent(score.HamProb)
			analysis.ModelUsed = score.Model
			if analysis.SpamProbability >= spamLabelThreshold {
				analysis.Classification = LabelSpam
			} else {
				analysis.Classification = LabelHam
			}
		}
	}

	// Keyword scan and URL scan run regardless of the spam model's health.
	analysis.Phishing = s.detector.Detect(text)
	analysis.Phishing.URLRisks = s.scanner.ScanText(ctx, text)

	analysis.WarningLevel, analysis.WarningMessage = fuse(
		analysis.SpamProbability,
		analysis.Phishing.IsPhishing,
		analysis.Phishing.URLRisks,
	)

	if s.observer != nil {
		s.observer.ObserveAnalysis(analysis, time.Since(started))
	}

	return analysis
}

// SetObserver attaches a verdict observer. Must be called before the service
// starts handling traffic.
func (s *AnalyzerService) SetObserver(observer AnalysisObserver) {
	s.observer = observer
}

// ClassifyURL classifies a single URL. With the verdict cache enabled,
// previously seen URLs are answered from the cache; this cannot change any
// verdict because classification is idempotent for a fixed model.
func (s *AnalyzerService) ClassifyURL(ctx context.Context, rawURL string) *URLRiskAssessment {
	if s.cacheEnabled && s.cache != nil {
		if entry, err := s.cache.Get(ctx, rawURL); err == nil {
			s.logger.Debug("Verdict cache hit", zap.String("url", rawURL))
			return &URLRiskAssessment{
				URL:        entry.URL,
				Label:      entry.Label,
				Confidence: entry.Confidence,
				RiskLevel:  entry.RiskLevel,
			}
		}
	}

	assessment := s.classifier.Classify(ctx, rawURL)

	if s.cacheEnabled && s.cache != nil && assessment.Err == "" {
		entry := &URLVerdictEntry{
			URL:        assessment.URL,
			Label:      assessment.Label,
			Confidence: assessment.Confidence,
			RiskLevel:  assessment.RiskLevel,
			LastSeen:   time.Now(),
			ExpiresAt:  time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update verdict cache", zap.Error(err))
		}
	}

	if s.observer != nil {
		s.observer.ObserveURLVerdict(&assessment)
	}

	return &assessment
}

// fuse is the priority cascade that merges all signals into one warning.
// Each condition is tested only if the prior one fails; first match wins.
func fuse(spamPct float64, isPhishing bool, urlRisks []URLRiskAssessment) (WarningLevel, string) {
	if spamPct >= spamLabelThreshold {
		return WarningHigh, msgSpamHigh
	}
	if anyRisk(urlRisks, RiskHigh) || (isPhishing && spamPct >= phishingEscalation) {
		return WarningHigh, msgPhishingHigh
	}
	if spamPct >= suspicionThreshold || anyRisk(urlRisks, RiskMedium) || isPhishing {
		return WarningMedium, msgSuspicious
	}
	return WarningLow, msgSafe
}

func anyRisk(urlRisks []URLRiskAssessment, level RiskLevel) bool {
	for _, r := range urlRisks {
		if r.RiskLevel == level {
			return true
		}
	}
	return false
}

// roundPercent converts a probability in [0,1] to a percentage rounded to one
// decimal place. Spam and ham are rounded independently, so their sum may
// drift from 100 by up to 0.1.
func roundPercent(p float64) float64 {
	return math.Round(p*1000) / 10
}
