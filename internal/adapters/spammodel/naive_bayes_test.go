package spammodel

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

// testArtifact is a tiny two-word model: "free" is spammy, "meeting" is hammy.
func testArtifact() *Artifact {
	return &Artifact{
		Classes:       []string{"ham", "spam"},
		ClassLogPrior: []float64{math.Log(0.5), math.Log(0.5)},
		Vocabulary:    map[string]int{"free": 0, "meeting": 1},
		FeatureLogProb: [][]float64{
			{math.Log(0.1), math.Log(0.9)}, // ham
			{math.Log(0.9), math.Log(0.1)}, // spam
		},
	}
}

func TestScoreText(t *testing.T) {
	c, err := New(testArtifact(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name        string
		text        string
		wantLabel   string
		wantSpamMin float64
		wantSpamMax float64
	}{
		{"spammy tokens", "FREE free!!!", "spam", 0.95, 1.0},
		{"hammy tokens", "Meeting meeting.", "ham", 0.0, 0.05},
		{"unknown tokens fall back to priors", "zzz qqq", "ham", 0.49, 0.51},
		{"empty text falls back to priors", "", "ham", 0.49, 0.51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := c.ScoreText(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("ScoreText: %v", err)
			}
			if score.Label != tt.wantLabel {
				t.Errorf("Label: got %s, want %s", score.Label, tt.wantLabel)
			}
			if score.SpamProb < tt.wantSpamMin || score.SpamProb > tt.wantSpamMax {
				t.Errorf("SpamProb: got %f, want in [%f, %f]", score.SpamProb, tt.wantSpamMin, tt.wantSpamMax)
			}
			if sum := score.SpamProb + score.HamProb; math.Abs(sum-1) > 1e-9 {
				t.Errorf("probabilities should sum to 1, got %f", sum)
			}
			if score.Model != "naive-bayes" {
				t.Errorf("Model: got %s, want naive-bayes", score.Model)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"no classes", func(a *Artifact) { a.Classes = nil }},
		{"prior shape mismatch", func(a *Artifact) { a.ClassLogPrior = []float64{0} }},
		{"probability row too short", func(a *Artifact) { a.FeatureLogProb[0] = []float64{0} }},
		{"missing spam class", func(a *Artifact) { a.Classes = []string{"ham", "other"} }},
		{"vocabulary index beyond rows", func(a *Artifact) { a.Vocabulary["free"] = 7 }},
		{"negative vocabulary index", func(a *Artifact) { a.Vocabulary["free"] = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testArtifact()
			tt.mutate(a)
			if _, err := New(a, zap.NewNop()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spam_model.json")

	data, err := json.Marshal(testArtifact())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	score, err := c.ScoreText(context.Background(), "free stuff")
	if err != nil {
		t.Fatalf("ScoreText: %v", err)
	}
	if score.Label != "spam" {
		t.Errorf("Label: got %s, want spam", score.Label)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json"), zap.NewNop()); err == nil {
		t.Error("expected error for missing artifact")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Hello World", "hello world"},
		{"strips urls", "check https://spam.example/offer today", "check today"},
		{"strips www urls", "go to www.spam.example now", "go to now"},
		{"strips digits and punctuation", "win $1000 now!!!", "win now"},
		{"collapses whitespace", "a\t b\n\n c", "a b c"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.in); got != tt.want {
				t.Errorf("CleanText(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
