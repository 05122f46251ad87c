// Package urlguard classifies URLs into graded risk levels using the
// pre-trained URL model, with a trust-domain override for well-known
// registrable domains.
package urlguard

import (
	"context"

	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/features"
	"github.com/spamurai/spamurai/internal/trustdomain"
	"go.uber.org/zap"
)

// Confidence cutoffs for the label-to-risk mapping and the override bypass.
const (
	highConfidence     = 0.8
	mediumConfidence   = 0.6
	overrideConfidence = 0.9
)

// Classifier wraps the URL model. A nil model is a supported state: every
// call then returns an "unknown" assessment instead of failing.
type Classifier struct {
	model       core.URLModel
	trusted     *trustdomain.List
	benignLabel string
	logger      *zap.Logger
}

// NewClassifier creates a new URL risk classifier
func NewClassifier(model core.URLModel, trusted *trustdomain.List, benignLabel string, logger *zap.Logger) *Classifier {
	if benignLabel == "" {
		benignLabel = "benign"
	}
	return &Classifier{
		model:       model,
		trusted:     trusted,
		benignLabel: benignLabel,
		logger:      logger,
	}
}

// Classify assesses one URL. It never panics and never returns an error;
// model failures are captured in the assessment's Err field.
func (c *Classifier) Classify(ctx context.Context, rawURL string) core.URLRiskAssessment {
	if c.model == nil {
		return core.URLRiskAssessment{
			URL:   rawURL,
			Label: core.LabelUnknown,
			Err:   "url model not loaded",
		}
	}

	rec := features.Extract(rawURL)

	label, confidence, err := c.predict(rec)
	if err != nil {
		c.logger.Warn("URL model prediction failed",
			zap.String("url", rawURL),
			zap.Error(err))
		return core.URLRiskAssessment{
			URL:   rawURL,
			Label: core.LabelError,
			Err:   err.Error(),
		}
	}

	risk := c.riskLevel(label, confidence)

	// Trust-domain override: an allow-listed domain under a common suffix is
	// downgraded to benign unless the model is near-certain of maliciousness.
	if label != c.benignLabel && confidence < overrideConfidence {
		domain, suffix := features.RegistrableDomain(rawURL)
		if c.trusted.IsTrusted(domain, suffix) {
			label = c.benignLabel
			risk = core.RiskLow
		}
	}

	return core.URLRiskAssessment{
		URL:        rawURL,
		Label:      label,
		Confidence: confidence,
		RiskLevel:  risk,
	}
}

// predict runs the model, preferring the probability-capable variant and
// falling back to the plain label with confidence 1.0.
func (c *Classifier) predict(rec *features.URLFeatureRecord) (string, float64, error) {
	if pm, ok := c.model.(core.ProbaURLModel); ok {
		labels, probs, err := pm.PredictProba(rec)
		if err == nil && len(labels) == len(probs) && len(labels) > 0 {
			best := 0
			for i := range probs {
				if probs[i] > probs[best] {
					best = i
				}
			}
			return labels[best], probs[best], nil
		}
		if err != nil {
			c.logger.Debug("predict_proba unavailable, falling back to predict", zap.Error(err))
		}
	}

	label, err := c.model.Predict(rec)
	if err != nil {
		return "", 0, err
	}
	return label, 1.0, nil
}

func (c *Classifier) riskLevel(label string, confidence float64) core.RiskLevel {
	if label == c.benignLabel {
		return core.RiskLow
	}
	switch {
	case confidence >= highConfidence:
		return core.RiskHigh
	case confidence >= mediumConfidence:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}
