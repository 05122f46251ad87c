package ports

import (
	"context"

	"github.com/spamurai/spamurai/internal/core"
)

// EmailFilter defines the interface for the mail-facing surfaces of the
// analyzer. Implementations receive whole emails and return the fused
// analysis for each.
type EmailFilter interface {
	// ProcessEmail analyzes a single email
	ProcessEmail(ctx context.Context, email *core.Email) (*core.TextAnalysis, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}
