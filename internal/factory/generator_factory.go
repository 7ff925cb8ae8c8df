// Package factory builds the configurable pieces of both services: the
// text generator, the reply cache and the outbound mail transport.
package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/llm-autoresponder/internal/adapters/bedrock"
	"github.com/mikey/llm-autoresponder/internal/adapters/gemini"
	"github.com/mikey/llm-autoresponder/internal/adapters/openai"
	"github.com/mikey/llm-autoresponder/internal/backend"
	"github.com/mikey/llm-autoresponder/internal/config"
)

// GeneratorFactory creates text generators
type GeneratorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeneratorFactory creates a new generator factory
func NewGeneratorFactory(cfg *config.Config, logger *zap.Logger) *GeneratorFactory {
	return &GeneratorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates the text generator named by generator.provider
func (f *GeneratorFactory) CreateGenerator(ctx context.Context) (backend.TextGenerator, error) {
	provider := f.cfg.GetGenerator().Provider

	switch provider {
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		client := goopenai.NewClient(openaiCfg.APIKey)
		return openai.NewGenerator(
			client,
			openaiCfg.ModelName,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.TopP,
			f.logger,
		), nil
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		return gemini.NewGenerator(
			ctx,
			geminiCfg.APIKey,
			geminiCfg.ModelName,
			geminiCfg.MaxTokens,
			geminiCfg.Temperature,
			geminiCfg.TopP,
			f.logger,
		)
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bedrockCfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		return bedrock.NewGenerator(
			client,
			bedrockCfg.ModelID,
			bedrockCfg.MaxTokens,
			bedrockCfg.Temperature,
			bedrockCfg.TopP,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", provider)
	}
}
