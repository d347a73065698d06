package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/observability"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// Tool names as exposed to the chat model.
const (
	ToolSearchProducts      = "search_products"
	ToolSearchByPrice       = "search_by_price"
	ToolAddProductToCart    = "add_product_to_cart"
	ToolGetMyCart           = "get_my_cart"
	ToolGetMyOrders         = "get_my_orders"
	ToolGetOrderByNumber    = "get_order_by_number"
	ToolGetMyInfo           = "get_my_info"
	ToolSearchKnowledgeBase = "search_knowledge_base"
)

// ToolSpec pairs a tool's schema with its executor. Run never returns a Go
// error; failures are carried inside the result so one failing tool does not
// abort its siblings in the same decision step.
type ToolSpec struct {
	Info *schema.ToolInfo
	Run  func(ctx context.Context, args json.RawMessage) model.ToolResult
}

// Registry is the per-turn tool set bound to one caller's credentials. It
// implements model.ToolDispatcher.
type Registry struct {
	backends  Backends
	session   Session
	knowledge model.KnowledgeConfig

	specs map[string]*ToolSpec
	order []string
}

// NewRegistry builds the full tool set for one caller. Registration order is
// the order tools are listed to the model.
func NewRegistry(backends Backends, session Session, knowledge model.KnowledgeConfig) *Registry {
	r := &Registry{
		backends:  backends,
		session:   session,
		knowledge: knowledge,
		specs:     make(map[string]*ToolSpec),
	}
	r.register(r.searchProductsSpec())
	r.register(r.searchByPriceSpec())
	r.register(r.addProductToCartSpec())
	r.register(r.getMyCartSpec())
	r.register(r.getMyOrdersSpec())
	r.register(r.getOrderByNumberSpec())
	r.register(r.getMyInfoSpec())
	r.register(r.searchKnowledgeBaseSpec())
	return r
}

func (r *Registry) register(spec *ToolSpec) {
	r.specs[spec.Info.Name] = spec
	r.order = append(r.order, spec.Info.Name)
}

// Infos returns the tool schemas in registration order.
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.specs[name].Info)
	}
	return infos
}

// ToolInfos returns the schemas of the full tool set, for binding to the chat
// model at graph build time. Schemas carry no per-caller state.
func ToolInfos() []*schema.ToolInfo {
	return NewRegistry(Backends{}, Session{}, model.KnowledgeConfig{}).Infos()
}

// Dispatch executes every requested call and returns results in invocation
// order. Calls run concurrently; each result slot is written by exactly one
// goroutine.
func (r *Registry) Dispatch(ctx context.Context, calls []schema.ToolCall) []model.ToolResult {
	results := make([]model.ToolResult, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call schema.ToolCall) {
			defer wg.Done()
			results[i] = r.run(ctx, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func (r *Registry) run(ctx context.Context, call schema.ToolCall) model.ToolResult {
	name := call.Function.Name
	spec, ok := r.specs[name]
	if !ok {
		// Gracefully handle hallucinated or malformed tool calls (e.g. empty name)
		logx.Warn().
			Str("tool_name", name).
			Str("arguments", call.Function.Arguments).
			Msg("Unknown or invalid tool call; returning fallback result")
		observability.ToolInvocations.WithLabelValues(name, "unknown").Inc()
		return model.ToolResult{
			ToolName: name,
			CallID:   call.ID,
			Content:  fmt.Sprintf("{\"error\":\"unknown_tool\",\"name\":%q,\"note\":\"ignored\"}", name),
			Err:      "unknown tool",
		}
	}

	logx.Debug().
		Str("tool_name", name).
		Str("arguments", call.Function.Arguments).
		Msg("Tool called")

	res := spec.Run(ctx, json.RawMessage(call.Function.Arguments))
	res.ToolName = name
	res.CallID = call.ID

	status := "ok"
	if res.Err != "" {
		status = "error"
	}
	observability.ToolInvocations.WithLabelValues(name, status).Inc()
	return res
}

// invalidArgs is the shared result for arguments that fail to decode.
func invalidArgs(name string, err error) model.ToolResult {
	logx.Warn().Str("tool_name", name).Err(err).Msg("Invalid tool arguments")
	return model.ToolResult{
		Content: fmt.Sprintf("Invalid arguments for %s. Please try again.", name),
		Err:     err.Error(),
	}
}
