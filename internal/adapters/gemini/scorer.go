package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Scorer is an implementation of the SpamScorer interface using Google Gemini
type Scorer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	promptFormat  string
	textProcessor *utils.TextProcessor
}

// spamScoreResponse represents the structured response from the LLM
type spamScoreResponse struct {
	Label           string  `json:"label"`
	SpamProbability float64 `json:"spam_probability"`
	HamProbability  float64 `json:"ham_probability"`
	Explanation     string  `json:"explanation"`
}

// NewScorer creates a new Gemini spam scorer
func NewScorer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Scorer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Scorer{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a spam detection system. Analyze the following text and determine if it's spam.
Respond with a JSON object containing:
- label: string, either "spam" or "ham"
- spam_probability: number between 0 and 1 (probability the text is spam)
- ham_probability: number between 0 and 1 (probability the text is legitimate; must sum to 1 with spam_probability)
- explanation: string (brief explanation of your assessment)

Text:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (s *Scorer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ScoreText scores a single piece of text for spam likelihood
func (s *Scorer) ScoreText(ctx context.Context, text string) (*core.SpamScore, error) {
	// Process the text (truncate and sanitize)
	processed := s.textProcessor.ProcessText(text, s.maxBodySize)

	prompt := fmt.Sprintf(s.promptFormat, processed)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	scoreResp, err := parseScoreResponse(responseText)
	if err != nil {
		return nil, err
	}

	return scoreToResult(scoreResp, s.modelName), nil
}

// parseScoreResponse parses the LLM's JSON response, tolerating prose around
// the JSON object.
func parseScoreResponse(responseText string) (*spamScoreResponse, error) {
	var scoreResp spamScoreResponse
	if err := json.Unmarshal([]byte(responseText), &scoreResp); err != nil {
		// Try to extract JSON from the text response
		jsonStart := 0
		jsonEnd := len(responseText)

		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '{' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == '}' {
				jsonEnd = i + 1
				break
			}
		}

		if jsonStart >= jsonEnd {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &scoreResp); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}
	return &scoreResp, nil
}

// scoreToResult normalizes an LLM response into a spam score. Probabilities
// are clamped to [0, 1] and the ham side is derived when the model omits it.
func scoreToResult(resp *spamScoreResponse, modelName string) *core.SpamScore {
	spamProb := clamp01(resp.SpamProbability)
	hamProb := resp.HamProbability
	if hamProb <= 0 {
		hamProb = 1 - spamProb
	}
	hamProb = clamp01(hamProb)

	label := resp.Label
	if label != core.LabelSpam && label != core.LabelHam {
		label = core.LabelHam
		if spamProb >= 0.5 {
			label = core.LabelSpam
		}
	}

	return &core.SpamScore{
		Label:    label,
		SpamProb: spamProb,
		HamProb:  hamProb,
		Model:    modelName,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
