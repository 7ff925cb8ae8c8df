// Package gemini implements the text generator port using Google Gemini.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Generator produces reply text via the Gemini API
type Generator struct {
	client    *genai.Client
	modelName string
	maxTokens int32
	temp      float32
	topP      float32
	logger    *zap.Logger
}

// NewGenerator creates a new Gemini generator
func NewGenerator(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Generator{
		client:    client,
		modelName: modelName,
		maxTokens: int32(maxTokens),
		temp:      temperature,
		topP:      topP,
		logger:    logger,
	}, nil
}

// Close closes the underlying client
func (g *Generator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Generate runs one completion. The system prompt is attached as the model
// system instruction; the user message is the prompt content.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(g.temp)
	model.SetTopP(g.topP)
	model.SetMaxOutputTokens(g.maxTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userMessage))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	g.logger.Debug("Completion received", zap.String("model", g.modelName))
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
