package di

import (
	"flag"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/spamurai/spamurai/internal/batch"
	"github.com/spamurai/spamurai/internal/config"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/factory"
	"github.com/spamurai/spamurai/internal/logging"
	"github.com/spamurai/spamurai/internal/ports"
	"github.com/spamurai/spamurai/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Scorer provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Artifact flags
	SpamModelPath string
	URLModelPath  string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Input flags
	InputFile  string
	URL        string
	BatchFile  string
	Workers    int
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Scorer provider flags
	flag.StringVar(&flags.Provider, "provider", "artifact", "Spam scorer provider (artifact, bedrock, gemini, openai)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum text size to send to an LLM scorer")

	// Artifact flags
	flag.StringVar(&flags.SpamModelPath, "spam-model", "models/spam_model.json", "Path to the serialized spam model")
	flag.StringVar(&flags.URLModelPath, "url-model", "models/url_guard.json", "Path to the serialized URL model")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.StringVar(&flags.URL, "url", "", "Classify a single URL instead of analyzing an email")
	flag.StringVar(&flags.BatchFile, "batch-file", "", "File with one text per line to analyze as a batch")
	flag.IntVar(&flags.Workers, "workers", 4, "Concurrent workers for batch analysis")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewScorerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register spam scorer and URL model
	if err := container.Provide(func(f *factory.ScorerFactory) (core.SpamScorer, error) {
		return f.CreateScorer()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ScorerFactory) (core.URLModel, error) {
		return f.CreateURLModel()
	}); err != nil {
		return nil, err
	}

	if err := provideAnalysisComponents(container); err != nil {
		return nil, err
	}

	// Register analyzer service with no cache
	if err := container.Provide(func(
		scorer core.SpamScorer,
		detector core.PhishingDetector,
		scanner core.URLScanner,
		classifier core.URLClassifier,
		logger *zap.Logger,
	) *core.AnalyzerService {
		return core.NewAnalyzerService(
			scorer,
			detector,
			scanner,
			classifier,
			nil,              // No cache for CLI
			false,            // Cache disabled
			time.Duration(0), // No TTL
			logger,
		)
	}); err != nil {
		return nil, err
	}

	// Register batch pool
	if err := container.Provide(func(service *core.AnalyzerService, flags *CLIFlags, logger *zap.Logger) *batch.Pool {
		return batch.NewPool(service, flags.Workers, logger)
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)

	// Set scorer provider
	v.Set("scorer.provider", flags.Provider)

	// Artifact locations
	v.Set("artifacts.spam_model_path", flags.SpamModelPath)
	v.Set("artifacts.url_model_path", flags.URLModelPath)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	v.Set("batch.workers", flags.Workers)

	return config.NewFromViper(v)
}
