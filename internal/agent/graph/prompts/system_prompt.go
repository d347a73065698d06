package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/agent/tools"
)

//go:embed template/system_prompt.txt
var coreSystemPrompt string

// RenderSystem renders the system prompt for one decision step. The context
// block is rebuilt from conversation metadata before every model call, so the
// model always sees the freshest folded state.
func RenderSystem(ctx context.Context, config model.PromptConfig, contextStr string) (string, error) {
	// Render via Eino prompt component (Go template) to both format and emit callbacks
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"StoreName":       config.StoreName,
		"Context":         contextStr,
		"SearchTool":      tools.ToolSearchProducts,
		"PriceSearchTool": tools.ToolSearchByPrice,
		"AddToCartTool":   tools.ToolAddProductToCart,
		"CartTool":        tools.ToolGetMyCart,
		"OrdersTool":      tools.ToolGetMyOrders,
		"OrderDetailTool": tools.ToolGetOrderByNumber,
		"CustomerTool":    tools.ToolGetMyInfo,
		"KnowledgeTool":   tools.ToolSearchKnowledgeBase,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
