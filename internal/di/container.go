package di

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/spamurai/spamurai/internal/config"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/factory"
	"github.com/spamurai/spamurai/internal/logging"
	"github.com/spamurai/spamurai/internal/metrics"
	"github.com/spamurai/spamurai/internal/phishing"
	"github.com/spamurai/spamurai/internal/ports"
	"github.com/spamurai/spamurai/internal/trustdomain"
	"github.com/spamurai/spamurai/internal/urlguard"
	"github.com/spamurai/spamurai/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
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
	if err := container.Provide(factory.NewCacheFactory); err != nil {
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

	// Register verdict cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		return f.CreateVerdictCache()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register analyzer service
	if err := container.Provide(core.NewAnalyzerService); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(metrics.NewCollector); err != nil {
		return nil, err
	}
	if err := container.Provide(func(registry *prometheus.Registry, cfg *config.Config, logger *zap.Logger) *metrics.Server {
		return metrics.NewServer(registry, cfg.GetString("metrics.listen_address"), logger)
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

// provideAnalysisComponents registers the phishing detector, the trusted
// domain list and the URL classification pipeline. Shared between the server
// and CLI containers.
func provideAnalysisComponents(container *dig.Container) error {
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.PhishingDetector {
		phishingCfg := cfg.GetPhishing()
		return phishing.NewDetector(phishingCfg.Keywords, phishingCfg.MinIndicators, logger)
	}); err != nil {
		return err
	}

	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *trustdomain.List {
		guardCfg := cfg.GetURLGuard()
		return trustdomain.NewList(guardCfg.TrustedDomains, guardCfg.TrustedSuffixes, logger)
	}); err != nil {
		return err
	}

	if err := container.Provide(func(
		model core.URLModel,
		trusted *trustdomain.List,
		cfg *config.Config,
		logger *zap.Logger,
	) core.URLClassifier {
		return urlguard.NewClassifier(model, trusted, cfg.GetURLGuard().BenignLabel, logger)
	}); err != nil {
		return err
	}

	return container.Provide(func(classifier core.URLClassifier, logger *zap.Logger) core.URLScanner {
		return urlguard.NewScanner(classifier, logger)
	})
}
