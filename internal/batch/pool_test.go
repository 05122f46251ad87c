package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// echoAnalyzer labels every text with its own content so order is checkable.
type echoAnalyzer struct {
	mu    sync.Mutex
	calls int
}

func (a *echoAnalyzer) AnalyzeText(ctx context.Context, text string) *core.TextAnalysis {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return &core.TextAnalysis{WarningMessage: text}
}

func TestRun_PreservesInputOrder(t *testing.T) {
	analyzer := &echoAnalyzer{}
	pool := NewPool(analyzer, 4, zap.NewNop())

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	results := pool.Run(context.Background(), texts)

	if len(results) != len(texts) {
		t.Fatalf("results: got %d, want %d", len(results), len(texts))
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if r.WarningMessage != texts[i] {
			t.Errorf("result %d: got %q, want %q", i, r.WarningMessage, texts[i])
		}
	}
	if analyzer.calls != len(texts) {
		t.Errorf("calls: got %d, want %d", analyzer.calls, len(texts))
	}
}

func TestRun_EmptyInput(t *testing.T) {
	pool := NewPool(&echoAnalyzer{}, 4, zap.NewNop())

	results := pool.Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("results: got %d, want 0", len(results))
	}
}

func TestRun_SingleWorker(t *testing.T) {
	pool := NewPool(&echoAnalyzer{}, 1, zap.NewNop())

	results := pool.Run(context.Background(), []string{"a", "b", "c"})
	for i, want := range []string{"a", "b", "c"} {
		if results[i].WarningMessage != want {
			t.Errorf("result %d: got %q, want %q", i, results[i].WarningMessage, want)
		}
	}
}

func TestRun_InvalidWorkerCountDefaultsToOne(t *testing.T) {
	pool := NewPool(&echoAnalyzer{}, 0, zap.NewNop())

	results := pool.Run(context.Background(), []string{"a"})
	if results[0] == nil || results[0].WarningMessage != "a" {
		t.Errorf("result: got %+v, want analysis of \"a\"", results[0])
	}
}

func TestRun_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(&echoAnalyzer{}, 2, zap.NewNop())
	results := pool.Run(ctx, []string{"a", "b", "c"})

	// Dispatch may stop at any point; the slice length is still stable.
	if len(results) != 3 {
		t.Fatalf("results: got %d, want 3", len(results))
	}
}
