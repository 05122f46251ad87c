package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spamurai/spamurai/internal/core"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for text analysis
type CliFilter struct {
	service *core.AnalyzerService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.AnalyzerService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail analyzes an email and displays the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.TextAnalysis, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	// Print body preview if verbose
	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Analysis ===\n")
	startTime := time.Now()
	analysis := f.service.AnalyzeText(ctx, analysisText(email))
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Classification: %s\n", analysis.Classification)
	fmt.Printf("Spam probability: %.1f%%\n", analysis.SpamProbability)
	fmt.Printf("Ham probability: %.1f%%\n", analysis.HamProbability)
	fmt.Printf("Warning level: %s\n", analysis.WarningLevel)
	fmt.Printf("Warning: %s\n", analysis.WarningMessage)
	if analysis.ModelUsed != "" {
		fmt.Printf("Model used: %s\n", analysis.ModelUsed)
	}
	if analysis.Error != "" {
		fmt.Printf("Analysis error: %s\n", analysis.Error)
	}

	if analysis.Phishing.IsPhishing {
		fmt.Printf("\nPhishing indicators: %s\n", strings.Join(analysis.Phishing.Keywords, ", "))
	} else if len(analysis.Phishing.Keywords) > 0 {
		fmt.Printf("\nWeak phishing signals: %s\n", strings.Join(analysis.Phishing.Keywords, ", "))
	}

	if len(analysis.Phishing.URLRisks) > 0 {
		fmt.Printf("\nURLs found:\n")
		for _, risk := range analysis.Phishing.URLRisks {
			if risk.Err != "" {
				fmt.Printf("  %s: %s (%s)\n", risk.URL, risk.Label, risk.Err)
				continue
			}
			fmt.Printf("  %s: %s risk (label %s, confidence %.2f)\n",
				risk.URL, risk.RiskLevel, risk.Label, risk.Confidence)
		}
	}

	fmt.Printf("\nProcessing time: %v\n", duration)

	return analysis, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
