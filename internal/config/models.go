package config

// ScorerConfig represents the spam scorer selection
type ScorerConfig struct {
	Provider string
}

// ArtifactsConfig represents the locations of the serialized model pipelines
type ArtifactsConfig struct {
	SpamModelPath string
	URLModelPath  string
}

// PhishingConfig represents the phishing keyword detector configuration
type PhishingConfig struct {
	Keywords      []string
	MinIndicators int
}

// URLGuardConfig represents the URL risk classifier configuration
type URLGuardConfig struct {
	BenignLabel     string
	TrustedDomains  []string
	TrustedSuffixes []string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetScorer returns the scorer configuration
func (c *Config) GetScorer() ScorerConfig {
	return ScorerConfig{
		Provider: c.GetString("scorer.provider"),
	}
}

// GetArtifacts returns the artifact configuration
func (c *Config) GetArtifacts() ArtifactsConfig {
	return ArtifactsConfig{
		SpamModelPath: c.GetString("artifacts.spam_model_path"),
		URLModelPath:  c.GetString("artifacts.url_model_path"),
	}
}

// GetPhishing returns the phishing detector configuration
func (c *Config) GetPhishing() PhishingConfig {
	return PhishingConfig{
		Keywords:      c.GetStringSlice("phishing.keywords"),
		MinIndicators: c.GetInt("phishing.min_indicators"),
	}
}

// GetURLGuard returns the URL guard configuration
func (c *Config) GetURLGuard() URLGuardConfig {
	return URLGuardConfig{
		BenignLabel:     c.GetString("urlguard.benign_label"),
		TrustedDomains:  c.GetStringSlice("urlguard.trusted_domains"),
		TrustedSuffixes: c.GetStringSlice("urlguard.trusted_suffixes"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}
