package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-turn state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Do not access AppState directly from outside handlers. For persistence,
//     use the ConversationStore.
type AppState struct {
	ConversationID string
	History        []*schema.Message // model-facing messages; mutated only inside Eino state handlers
	Metadata       Metadata          // rolling contextual summary, folded after each dispatch
	Dispatcher     ToolDispatcher    // per-turn registry bound to the caller's credentials

	ToolCallCount        int  // maintained in handlers (reset/increment)
	ToolCallLimitReached bool // set when the tool call budget is exceeded
	ToolCallIDSeq        int  // local sequence to synthesize tool_call_id when the provider omits it

	ToolsUsed   []string // tool names invoked during this turn, invocation order
	LastPayload *Payload // most recent structured payload, surfaced as the turn's data field
	Committed   bool     // set once the turn's state has been committed

	// Accumulated total LLM cost (USD) across model invocations for this turn.
	TotalCostUSD float64
}

// QueryInput is one turn request: the user query plus the credentials the
// tool executors are bound to.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
	AuthToken      string `json:"auth_token"`
	PublishableKey string `json:"x_publishable_api_key"`
	CartID         string `json:"cart_id,omitempty"`
}

// QueryOutput is the turn result handed back to the API surface.
type QueryOutput struct {
	Answer         string   `json:"ai_response"`
	Data           *Payload `json:"data,omitempty"`
	ToolsUsed      []string `json:"tools_used"`
	ConversationID string   `json:"thread_id"`
	CostUSD        float64  `json:"-"`
}
