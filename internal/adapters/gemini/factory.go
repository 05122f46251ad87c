package gemini

import (
	"github.com/spamurai/spamurai/internal/config"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/utils"
	"go.uber.org/zap"
)

// Factory creates new instances of the Gemini scorer
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for Gemini scorer instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateScorer creates a new Gemini-backed spam scorer
func (f *Factory) CreateScorer() (core.SpamScorer, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewScorer(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
}
