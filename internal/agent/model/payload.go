package model

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/commerce"
	"github.com/medusa-chatbot/server/internal/search"
)

// PayloadType discriminates structured tool payloads and selects the
// metadata folding rule applied to them.
type PayloadType string

const (
	PayloadCart           PayloadType = "cart"
	PayloadOrderList      PayloadType = "list"
	PayloadOrderSingle    PayloadType = "single"
	PayloadSearch         PayloadType = "search"
	PayloadPriceSearch    PayloadType = "price_search"
	PayloadCustomerInfo   PayloadType = "customer_info"
	PayloadCartUpdated    PayloadType = "cart_updated"
	PayloadProductDetails PayloadType = "product_details"
)

// Payload is the machine-oriented data a tool returns alongside its
// natural-language text. It is threaded explicitly from dispatch to the
// metadata fold and surfaced as the turn's `data` field; only the fields
// matching Type are populated.
type Payload struct {
	Type     PayloadType        `json:"type"`
	Query    string             `json:"query,omitempty"`
	MaxPrice float64            `json:"max_price,omitempty"`
	Products []search.Product   `json:"products,omitempty"`
	Product  *commerce.Product  `json:"product,omitempty"`
	Cart     *commerce.Cart     `json:"cart,omitempty"`
	Orders   []commerce.Order   `json:"orders,omitempty"`
	Order    *commerce.Order    `json:"order,omitempty"`
	Customer *commerce.Customer `json:"customer,omitempty"`
}

// ToolResult is the outcome of one tool invocation: the text shown to the
// model, the structured payload, and the error string when the call failed.
type ToolResult struct {
	ToolName string   `json:"tool_name"`
	CallID   string   `json:"call_id,omitempty"`
	Content  string   `json:"content"`
	Payload  *Payload `json:"payload,omitempty"`
	Err      string   `json:"error,omitempty"`
}

// ToolDispatcher executes a decision step's requested tool invocations and
// returns their results in invocation order. Implemented by the tool
// registry; held in AppState so the executor node stays decoupled from the
// registry package.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, calls []schema.ToolCall) []ToolResult
}
