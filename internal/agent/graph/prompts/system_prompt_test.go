package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/agent/tools"
)

func TestRenderSystem(t *testing.T) {
	cfg := model.PromptConfig{StoreName: "Acme Outfitters"}

	got, err := RenderSystem(context.Background(), cfg, "Products recently discussed: Blue Shirt")
	if err != nil {
		t.Fatalf("RenderSystem: %v", err)
	}

	if !strings.Contains(got, "Acme Outfitters") {
		t.Errorf("store name not rendered:\n%s", got)
	}
	if !strings.Contains(got, "Products recently discussed: Blue Shirt") {
		t.Errorf("context block not rendered:\n%s", got)
	}
	for _, tool := range []string{
		tools.ToolSearchProducts,
		tools.ToolSearchByPrice,
		tools.ToolAddProductToCart,
		tools.ToolGetMyCart,
		tools.ToolGetMyOrders,
		tools.ToolGetOrderByNumber,
		tools.ToolGetMyInfo,
		tools.ToolSearchKnowledgeBase,
	} {
		if !strings.Contains(got, tool) {
			t.Errorf("tool %q missing from rendered prompt", tool)
		}
	}
	if strings.Contains(got, "{{") {
		t.Errorf("unrendered template variables remain:\n%s", got)
	}
}

func TestRenderSystemNoContext(t *testing.T) {
	got, err := RenderSystem(context.Background(), model.PromptConfig{StoreName: "a store"}, model.NoContextMarker)
	if err != nil {
		t.Fatalf("RenderSystem: %v", err)
	}
	if !strings.Contains(got, model.NoContextMarker) {
		t.Errorf("no-context marker missing:\n%s", got)
	}
}
