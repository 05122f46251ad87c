// Package batch runs the analyzer over many texts concurrently.
package batch

import (
	"context"
	"sync"

	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// Analyzer is the slice of the analyzer service the pool needs.
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) *core.TextAnalysis
}

// Pool fans a batch of texts out to a fixed number of workers. Results come
// back in input order regardless of completion order.
type Pool struct {
	analyzer Analyzer
	workers  int
	logger   *zap.Logger
}

// NewPool creates a new analysis pool
func NewPool(analyzer Analyzer, workers int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		analyzer: analyzer,
		workers:  workers,
		logger:   logger,
	}
}

type job struct {
	index int
	text  string
}

// Run analyzes every text and returns one result per input, in input order.
// A cancelled context leaves the remaining slots nil.
func (p *Pool) Run(ctx context.Context, texts []string) []*core.TextAnalysis {
	results := make([]*core.TextAnalysis, len(texts))
	if len(texts) == 0 {
		return results
	}

	jobs := make(chan job)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(texts) {
		workers = len(texts)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = p.analyzer.AnalyzeText(ctx, j.text)
			}
		}()
	}

	p.logger.Debug("Batch analysis started",
		zap.Int("texts", len(texts)),
		zap.Int("workers", workers))

dispatch:
	for i, text := range texts {
		select {
		case jobs <- job{index: i, text: text}:
		case <-ctx.Done():
			p.logger.Warn("Batch analysis cancelled", zap.Error(ctx.Err()))
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	return results
}
