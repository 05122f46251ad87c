package openai

import (
	"github.com/sashabaranov/go-openai"
	"github.com/spamurai/spamurai/internal/config"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of the OpenAI scorer
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAI scorer instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateScorer creates a new OpenAI-backed spam scorer
func (f *Factory) CreateScorer() (core.SpamScorer, error) {
	openaiCfg := f.cfg.GetOpenAI()

	client := openai.NewClient(openaiCfg.APIKey)

	return NewScorer(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}
