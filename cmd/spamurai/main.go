package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/spamurai/spamurai/internal/batch"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/di"
	"github.com/spamurai/spamurai/internal/ports"
	"github.com/spamurai/spamurai/internal/report"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to the requested mode: one-shot URL classification, batch
// analysis, or single email analysis.
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	service *core.AnalyzerService,
	pool *batch.Pool,
	emailFilter ports.EmailFilter,
	scorer core.SpamScorer,
) error {
	defer logger.Sync()
	defer closeScorer(scorer, logger)

	ctx := context.Background()

	switch {
	case flags.URL != "":
		return classifyURL(ctx, service, flags.URL)
	case flags.BatchFile != "":
		return runBatch(ctx, pool, flags.BatchFile, logger)
	default:
		return analyzeEmail(ctx, emailFilter, flags.InputFile, logger)
	}
}

// classifyURL classifies a single URL and prints the assessment as JSON.
func classifyURL(ctx context.Context, service *core.AnalyzerService, rawURL string) error {
	assessment := service.ClassifyURL(ctx, rawURL)
	return printJSON(assessment)
}

// runBatch analyzes one text per input line and prints the batch summary.
func runBatch(ctx context.Context, pool *batch.Pool, path string, logger *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open batch file: %w", err)
	}
	defer file.Close()

	var texts []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read batch file: %w", err)
	}

	logger.Info("Analyzing batch", zap.String("file", path), zap.Int("texts", len(texts)))

	results := pool.Run(ctx, texts)
	summary := report.Summarize(results)

	return printJSON(struct {
		Summary *report.Summary      `json:"summary"`
		Results []*core.TextAnalysis `json:"results"`
	}{Summary: summary, Results: results})
}

// analyzeEmail reads a single email from a file or stdin and analyzes it.
func analyzeEmail(ctx context.Context, emailFilter ports.EmailFilter, inputFile string, logger *zap.Logger) error {
	var emailReader io.Reader
	if inputFile != "" {
		file, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file %s: %w", inputFile, err)
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		return fmt.Errorf("failed to parse email: %w", err)
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return fmt.Errorf("failed to read email body: %w", err)
	}

	email := &core.Email{
		From:    msg.Header.Get("From"),
		To:      strings.Split(msg.Header.Get("To"), ","),
		Subject: msg.Header.Get("Subject"),
		Body:    string(bodyBytes),
		Headers: make(map[string][]string),
	}
	for k, v := range msg.Header {
		email.Headers[k] = v
	}

	_, err = emailFilter.ProcessEmail(ctx, email)
	return err
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func closeScorer(scorer core.SpamScorer, logger *zap.Logger) {
	if closer, ok := scorer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close scorer", zap.Error(err))
		}
	}
}
