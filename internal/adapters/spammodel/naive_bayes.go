// Package spammodel loads and scores with the serialized spam/ham text
// pipeline: a multinomial naive-Bayes classifier over a fitted unigram
// vocabulary, exported to JSON by the offline training job.
package spammodel

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// Artifact is the on-disk shape of the trained pipeline.
type Artifact struct {
	Classes        []string       `json:"classes"`
	ClassLogPrior  []float64      `json:"class_log_prior"`
	Vocabulary     map[string]int `json:"vocabulary"`
	FeatureLogProb [][]float64    `json:"feature_log_prob"`
}

// Classifier is an implementation of the SpamScorer interface backed by a
// loaded Artifact. It is immutable after construction and safe for
// concurrent use.
type Classifier struct {
	artifact *Artifact
	spamIdx  int
	hamIdx   int
	logger   *zap.Logger
}

// Load reads and validates a serialized spam model from disk.
func Load(path string, logger *zap.Logger) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spam model: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse spam model: %w", err)
	}

	return New(&artifact, logger)
}

// New creates a classifier from an already-decoded artifact.
func New(artifact *Artifact, logger *zap.Logger) (*Classifier, error) {
	n := len(artifact.Classes)
	if n == 0 {
		return nil, fmt.Errorf("spam model has no classes")
	}
	if len(artifact.ClassLogPrior) != n || len(artifact.FeatureLogProb) != n {
		return nil, fmt.Errorf("spam model shape mismatch: %d classes, %d priors, %d probability rows",
			n, len(artifact.ClassLogPrior), len(artifact.FeatureLogProb))
	}
	vocabSize := len(artifact.Vocabulary)
	minRow := -1
	for i, row := range artifact.FeatureLogProb {
		if len(row) < vocabSize {
			return nil, fmt.Errorf("spam model probability row %d has %d entries, vocabulary has %d",
				i, len(row), vocabSize)
		}
		if minRow < 0 || len(row) < minRow {
			minRow = len(row)
		}
	}
	for token, idx := range artifact.Vocabulary {
		if idx < 0 || idx >= minRow {
			return nil, fmt.Errorf("spam model vocabulary entry %q has index %d outside probability rows of length %d",
				token, idx, minRow)
		}
	}

	c := &Classifier{
		artifact: artifact,
		spamIdx:  -1,
		hamIdx:   -1,
		logger:   logger,
	}
	for i, class := range artifact.Classes {
		switch class {
		case core.LabelSpam:
			c.spamIdx = i
		case core.LabelHam:
			c.hamIdx = i
		}
	}
	if c.spamIdx < 0 || c.hamIdx < 0 {
		return nil, fmt.Errorf("spam model classes %v missing spam/ham", artifact.Classes)
	}

	logger.Info("Loaded spam model artifact",
		zap.Int("vocabulary_size", vocabSize),
		zap.Strings("classes", artifact.Classes))

	return c, nil
}

// ScoreText scores a single piece of text, returning the predicted label and
// the spam/ham probability pair.
func (c *Classifier) ScoreText(_ context.Context, text string) (*core.SpamScore, error) {
	tokens := tokenize(CleanText(text))

	// Joint log-likelihood per class: prior plus the per-token conditional
	// log-probabilities for tokens the vocabulary knows about.
	logLikelihood := make([]float64, len(c.artifact.Classes))
	copy(logLikelihood, c.artifact.ClassLogPrior)
	for _, token := range tokens {
		idx, ok := c.artifact.Vocabulary[token]
		if !ok {
			continue
		}
		for class := range logLikelihood {
			logLikelihood[class] += c.artifact.FeatureLogProb[class][idx]
		}
	}

	probs := softmaxFromLogs(logLikelihood)

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}

	return &core.SpamScore{
		Label:    c.artifact.Classes[best],
		SpamProb: probs[c.spamIdx],
		HamProb:  probs[c.hamIdx],
		Model:    "naive-bayes",
	}, nil
}

// softmaxFromLogs normalizes joint log-likelihoods into probabilities using
// the log-sum-exp trick to stay finite for long messages.
func softmaxFromLogs(logs []float64) []float64 {
	maxLog := logs[0]
	for _, l := range logs[1:] {
		if l > maxLog {
			maxLog = l
		}
	}

	probs := make([]float64, len(logs))
	sum := 0.0
	for i, l := range logs {
		probs[i] = math.Exp(l - maxLog)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
