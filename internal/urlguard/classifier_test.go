package urlguard

import (
	"context"
	"errors"
	"testing"

	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/features"
	"github.com/spamurai/spamurai/internal/trustdomain"
	"go.uber.org/zap"
)

// probaModel returns a fixed label/confidence pair through PredictProba.
type probaModel struct {
	label      string
	confidence float64
	err        error
}

func (m *probaModel) Predict(rec *features.URLFeatureRecord) (string, error) {
	return m.label, m.err
}

func (m *probaModel) PredictProba(rec *features.URLFeatureRecord) ([]string, []float64, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return []string{m.label, "other"}, []float64{m.confidence, 1 - m.confidence}, nil
}

// labelOnlyModel has no probability support.
type labelOnlyModel struct {
	label string
	err   error
}

func (m *labelOnlyModel) Predict(rec *features.URLFeatureRecord) (string, error) {
	return m.label, m.err
}

func newTestClassifier(model core.URLModel) *Classifier {
	trusted := trustdomain.NewList(
		[]string{"google", "github", "microsoft", "apple"},
		[]string{"com", "net", "org"},
		zap.NewNop(),
	)
	return NewClassifier(model, trusted, "benign", zap.NewNop())
}

func TestClassify_RiskMapping(t *testing.T) {
	tests := []struct {
		name       string
		label      string
		confidence float64
		wantRisk   core.RiskLevel
	}{
		{"benign is always low", "benign", 0.99, core.RiskLow},
		{"malicious at high confidence", "malicious", 0.85, core.RiskHigh},
		{"malicious at boundary 0.8", "malicious", 0.8, core.RiskHigh},
		{"malicious at medium confidence", "phishing", 0.7, core.RiskMedium},
		{"malicious at boundary 0.6", "phishing", 0.6, core.RiskMedium},
		{"malicious at low confidence", "defacement", 0.5, core.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClassifier(&probaModel{label: tt.label, confidence: tt.confidence})
			got := c.Classify(context.Background(), "http://evil.example/path")

			if got.RiskLevel != tt.wantRisk {
				t.Errorf("RiskLevel: got %s, want %s", got.RiskLevel, tt.wantRisk)
			}
			if got.Label != tt.label {
				t.Errorf("Label: got %s, want %s", got.Label, tt.label)
			}
			if got.Confidence != tt.confidence {
				t.Errorf("Confidence: got %f, want %f", got.Confidence, tt.confidence)
			}
			if got.Err != "" {
				t.Errorf("unexpected Err %q", got.Err)
			}
		})
	}
}

func TestClassify_TrustOverride(t *testing.T) {
	t.Run("marginal verdict on trusted domain downgrades", func(t *testing.T) {
		c := newTestClassifier(&probaModel{label: "phishing", confidence: 0.7})
		got := c.Classify(context.Background(), "https://accounts.google.com/signin")

		if got.Label != "benign" {
			t.Errorf("Label: got %s, want benign", got.Label)
		}
		if got.RiskLevel != core.RiskLow {
			t.Errorf("RiskLevel: got %s, want low", got.RiskLevel)
		}
	})

	t.Run("near-certain verdict bypasses the override", func(t *testing.T) {
		c := newTestClassifier(&probaModel{label: "phishing", confidence: 0.95})
		got := c.Classify(context.Background(), "https://accounts.google.com/signin")

		if got.Label != "phishing" {
			t.Errorf("Label: got %s, want phishing", got.Label)
		}
		if got.RiskLevel != core.RiskHigh {
			t.Errorf("RiskLevel: got %s, want high", got.RiskLevel)
		}
	})

	t.Run("untrusted suffix keeps the verdict", func(t *testing.T) {
		c := newTestClassifier(&probaModel{label: "phishing", confidence: 0.7})
		got := c.Classify(context.Background(), "https://google.xyz/signin")

		if got.Label != "phishing" {
			t.Errorf("Label: got %s, want phishing", got.Label)
		}
	})
}

func TestClassify_LabelOnlyFallback(t *testing.T) {
	c := newTestClassifier(&labelOnlyModel{label: "malicious"})
	got := c.Classify(context.Background(), "http://evil.example")

	if got.Confidence != 1.0 {
		t.Errorf("Confidence: got %f, want 1.0", got.Confidence)
	}
	if got.RiskLevel != core.RiskHigh {
		t.Errorf("RiskLevel: got %s, want high", got.RiskLevel)
	}
}

func TestClassify_NilModel(t *testing.T) {
	c := newTestClassifier(nil)
	got := c.Classify(context.Background(), "http://evil.example")

	if got.Label != core.LabelUnknown {
		t.Errorf("Label: got %s, want unknown", got.Label)
	}
	if got.Err == "" {
		t.Error("expected Err to explain the missing model")
	}
}

func TestClassify_ModelError(t *testing.T) {
	c := newTestClassifier(&labelOnlyModel{err: errors.New("corrupt artifact")})
	got := c.Classify(context.Background(), "http://evil.example")

	if got.Label != core.LabelError {
		t.Errorf("Label: got %s, want error", got.Label)
	}
	if got.Err != "corrupt artifact" {
		t.Errorf("Err: got %q, want corrupt artifact", got.Err)
	}
}
