// Package urlmodel loads and scores with the serialized URL risk pipeline: a
// decision forest over the structural URL features plus a bag-of-words
// encoding of the registrable domain, exported to JSON by the offline
// training job. The domain vocabulary is fitted jointly with the forest and
// travels inside the artifact.
package urlmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spamurai/spamurai/internal/features"
	"go.uber.org/zap"
)

// numericFeatureCount is the size of the numeric block at the front of every
// input vector, in order: length, digits, letters, special chars, dots,
// slashes, entropy.
const numericFeatureCount = 7

// Node is one decision-tree node. Left/Right index into the tree's node
// slice; a negative Left marks a leaf carrying the class distribution.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

// Tree is a single decision tree, nodes stored flat with the root at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact is the on-disk shape of the trained URL pipeline.
type Artifact struct {
	Classes          []string       `json:"classes"`
	DomainVocabulary map[string]int `json:"domain_vocabulary"`
	Trees            []Tree         `json:"trees"`
}

// Forest is the loaded URL model. It implements both Predict and
// PredictProba and is safe for concurrent use.
type Forest struct {
	artifact *Artifact
	logger   *zap.Logger
}

// Load reads and validates a serialized URL model from disk.
func Load(path string, logger *zap.Logger) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read url model: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse url model: %w", err)
	}

	return New(&artifact, logger)
}

// New creates a forest from an already-decoded artifact.
func New(artifact *Artifact, logger *zap.Logger) (*Forest, error) {
	if len(artifact.Classes) == 0 {
		return nil, fmt.Errorf("url model has no classes")
	}
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("url model has no trees")
	}

	vectorSize := numericFeatureCount + len(artifact.DomainVocabulary)
	for t, tree := range artifact.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("url model tree %d is empty", t)
		}
		for n, node := range tree.Nodes {
			if node.Left < 0 {
				if len(node.Value) != len(artifact.Classes) {
					return nil, fmt.Errorf("url model tree %d leaf %d has %d values for %d classes",
						t, n, len(node.Value), len(artifact.Classes))
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= vectorSize {
				return nil, fmt.Errorf("url model tree %d node %d splits on feature %d outside vector size %d",
					t, n, node.Feature, vectorSize)
			}
			if node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("url model tree %d node %d has out-of-range children", t, n)
			}
			// Flat-array exports store children after their parent; anything
			// else would let traversal revisit a node and never terminate.
			if node.Left <= n || node.Right <= n {
				return nil, fmt.Errorf("url model tree %d node %d has non-descending children", t, n)
			}
		}
	}

	logger.Info("Loaded url model artifact",
		zap.Int("trees", len(artifact.Trees)),
		zap.Int("domain_vocabulary_size", len(artifact.DomainVocabulary)),
		zap.Strings("classes", artifact.Classes))

	return &Forest{artifact: artifact, logger: logger}, nil
}

// Predict returns the single predicted label for a feature record.
func (f *Forest) Predict(rec *features.URLFeatureRecord) (string, error) {
	labels, probs, err := f.PredictProba(rec)
	if err != nil {
		return "", err
	}

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return labels[best], nil
}

// PredictProba returns the class labels and the probability vector averaged
// over all trees' leaf distributions.
func (f *Forest) PredictProba(rec *features.URLFeatureRecord) ([]string, []float64, error) {
	if rec == nil {
		return nil, nil, fmt.Errorf("nil feature record")
	}

	vec := f.vectorize(rec)

	probs := make([]float64, len(f.artifact.Classes))
	for _, tree := range f.artifact.Trees {
		leaf := traverse(tree, vec)
		for i, v := range leaf.Value {
			probs[i] += v
		}
	}
	for i := range probs {
		probs[i] /= float64(len(f.artifact.Trees))
	}

	labels := make([]string, len(f.artifact.Classes))
	copy(labels, f.artifact.Classes)
	return labels, probs, nil
}

// vectorize lays out the numeric block followed by the domain bag-of-words
// counts, matching the column order the forest was trained against.
func (f *Forest) vectorize(rec *features.URLFeatureRecord) []float64 {
	vec := make([]float64, numericFeatureCount+len(f.artifact.DomainVocabulary))
	vec[0] = float64(rec.Length)
	vec[1] = float64(rec.DigitCount)
	vec[2] = float64(rec.LetterCount)
	vec[3] = float64(rec.SpecialCharCount)
	vec[4] = float64(rec.DotCount)
	vec[5] = float64(rec.SlashCount)
	vec[6] = rec.Entropy

	for _, token := range domainTokens(rec.Domain) {
		if idx, ok := f.artifact.DomainVocabulary[token]; ok {
			vec[numericFeatureCount+idx]++
		}
	}
	return vec
}

// domainTokens splits a domain label into lowercase alphanumeric tokens.
func domainTokens(domain string) []string {
	return strings.FieldsFunc(strings.ToLower(domain), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

// traverse walks one tree to its leaf for the given vector. Splits follow
// the trained convention: x[feature] <= threshold goes left.
func traverse(tree Tree, vec []float64) Node {
	node := tree.Nodes[0]
	for node.Left >= 0 {
		if vec[node.Feature] <= node.Threshold {
			node = tree.Nodes[node.Left]
		} else {
			node = tree.Nodes[node.Right]
		}
	}
	return node
}
