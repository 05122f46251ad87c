package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/spamurai/spamurai/internal/core"
	"github.com/spamurai/spamurai/internal/utils"
	"go.uber.org/zap"
)

// Scorer is an implementation of the SpamScorer interface using Amazon Bedrock
type Scorer struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewScorer creates a new Bedrock spam scorer
func NewScorer(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Scorer {
	return &Scorer{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
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
	}
}

// ScoreText scores a single piece of text for spam likelihood
func (s *Scorer) ScoreText(ctx context.Context, text string) (*core.SpamScore, error) {
	// Process the text (truncate and sanitize)
	processed := s.textProcessor.ProcessText(text, s.maxBodySize)

	prompt := fmt.Sprintf(s.promptFormat, processed)

	// Request payload shape depends on the model family
	var payload []byte
	var err error

	if s.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": s.maxTokens,
			"temperature":          s.temperature,
			"top_p":                s.topP,
		})
	} else if s.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": s.maxTokens,
				"temperature":   s.temperature,
				"topP":          s.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  s.maxTokens,
			"temperature": s.temperature,
			"top_p":       s.topP,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &s.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := s.responseText(resp.Body)
	if err != nil {
		return nil, err
	}

	scoreResp, err := parseScoreResponse(responseText)
	if err != nil {
		return nil, err
	}

	return scoreToResult(scoreResp, s.modelID), nil
}

// responseText extracts the completion text from a model-family-specific
// response body.
func (s *Scorer) responseText(body []byte) (string, error) {
	if s.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if s.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	}
	return string(body), nil
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
func scoreToResult(resp *spamScoreResponse, modelID string) *core.SpamScore {
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
		Model:    modelID,
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (s *Scorer) isAnthropicModel() bool {
	return strings.HasPrefix(s.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (s *Scorer) isAmazonTitanModel() bool {
	return strings.HasPrefix(s.modelID, "amazon.titan")
}
