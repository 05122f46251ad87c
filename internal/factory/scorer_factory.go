package factory

import (
	"fmt"

	"github.com/spamurai/spamurai/internal/adapters/bedrock"
	"github.com/spamurai/spamurai/internal/adapters/gemini"
	"github.com/spamurai/spamurai/internal/adapters/openai"
	"github.com/spamurai/spamurai/internal/adapters/spammodel"
	"github.com/spamurai/spamurai/internal/adapters/urlmodel"
	"github.com/spamurai/spamurai/internal/config"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/utils"
	"go.uber.org/zap"
)

// ScorerFactory creates spam scorers and URL models
type ScorerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewScorerFactory creates a new scorer factory
func NewScorerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ScorerFactory {
	return &ScorerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateScorer creates a spam scorer based on the configured provider. With
// the artifact provider, a missing or unreadable model file yields a nil
// scorer so the remaining signals keep working.
func (f *ScorerFactory) CreateScorer() (core.SpamScorer, error) {
	scorerCfg := f.cfg.GetScorer()

	switch scorerCfg.Provider {
	case "artifact":
		path := f.cfg.GetArtifacts().SpamModelPath
		scorer, err := spammodel.Load(path, f.logger)
		if err != nil {
			f.logger.Warn("Spam model unavailable, spam scoring degraded",
				zap.String("path", path),
				zap.Error(err))
			return nil, nil
		}
		return scorer, nil
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateScorer()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateScorer()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateScorer()
	default:
		return nil, fmt.Errorf("unsupported scorer provider: %s", scorerCfg.Provider)
	}
}

// CreateURLModel loads the URL classification model. A missing or unreadable
// artifact yields a nil model; URL assessments then degrade to "unknown".
func (f *ScorerFactory) CreateURLModel() (core.URLModel, error) {
	path := f.cfg.GetArtifacts().URLModelPath
	model, err := urlmodel.Load(path, f.logger)
	if err != nil {
		f.logger.Warn("URL model unavailable, URL risk scoring degraded",
			zap.String("path", path),
			zap.Error(err))
		return nil, nil
	}
	return model, nil
}
