package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/medusa-chatbot/server/internal/agent/model"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// ChatModelConfig holds what is needed to create the response chat model.
// The genai client is shared with the embedding pipeline.
type ChatModelConfig struct {
	Client *genai.Client
	Chat   model.ChatModelConfig
}

// ChatModels holds the response chat model and its name for cost resolution.
type ChatModels struct {
	Response  *gemini.ChatModel
	ModelName string
}

// NewChatModels creates the response chat model with the given configuration.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      config.Client,
		Model:       config.Chat.Model,
		Temperature: &config.Chat.Temperature,
		MaxTokens:   &config.Chat.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	return &ChatModels{
		Response:  chatModel,
		ModelName: config.Chat.Model,
	}, nil
}

// BindTools binds the tool schemas to the response chat model.
func (cm *ChatModels) BindTools(ctx context.Context, tools []*schema.ToolInfo) error {
	if err := cm.Response.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}
	logx.Debug().Int("tool_count", len(tools)).Msg("Bound tools to response model")
	return nil
}
