package classifier

import (
	"context"
	"fmt"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"
)

// NewGeminiChatModel builds the Gemini chat model used for classification.
func NewGeminiChatModel(ctx context.Context, cfg model.ClassifierModelConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		// classification is a short structured answer
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Str("model", cfg.Model).Msg("Error creating classifier model")
		return nil, fmt.Errorf("error creating classifier model: %w", err)
	}
	return cm, nil
}
