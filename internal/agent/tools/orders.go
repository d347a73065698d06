package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
)

const defaultOrderLimit = 10

func (r *Registry) getMyOrdersSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolGetMyOrders,
			Desc: "Get all orders for the customer. Use when user asks about their orders or order history.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"limit": {
					Type: "number",
					Desc: "Maximum number of orders to retrieve (default: 10)",
				},
			}),
		},
		Run: func(ctx context.Context, args json.RawMessage) model.ToolResult {
			var in struct {
				Limit int `json:"limit,omitempty"`
			}
			if len(args) > 0 {
				if err := json.Unmarshal(args, &in); err != nil {
					return invalidArgs(ToolGetMyOrders, err)
				}
			}
			if in.Limit <= 0 {
				in.Limit = defaultOrderLimit
			}

			orders, err := r.backends.Commerce.ListOrders(ctx, r.session.Credentials, in.Limit, 0)
			if err != nil {
				return model.ToolResult{Content: "Unable to fetch orders: " + err.Error(), Err: err.Error()}
			}

			payload := &model.Payload{Type: model.PayloadOrderList, Orders: orders}
			if len(orders) == 0 {
				return model.ToolResult{Content: "You don't have any orders yet.", Payload: payload}
			}

			var b strings.Builder
			for _, order := range orders {
				fmt.Fprintf(&b, "**Order #%d** - %s %s\n", order.DisplayID, amount(order.OverallPrice), order.CurrencyCode)
				fmt.Fprintf(&b, "Fulfillment: %s • Payment: %s\n\n", titleCase(order.FulfillmentStatus), titleCase(order.PaymentStatus))
			}

			content := fmt.Sprintf(
				"Here are your %d order(s):\n\n%s\nFor detailed information about any order, just ask about the specific order number!",
				len(orders), wrapHidden(b.String()),
			)
			return model.ToolResult{Content: content, Payload: payload}
		},
	}
}

func (r *Registry) getOrderByNumberSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolGetOrderByNumber,
			Desc: "Get detailed information about a specific order by its order number (display_id).",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"display_id": {
					Type:     "number",
					Desc:     "The order display ID (the order number shown to customers)",
					Required: true,
				},
			}),
		},
		Run: func(ctx context.Context, args json.RawMessage) model.ToolResult {
			var in struct {
				DisplayID int `json:"display_id"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgs(ToolGetOrderByNumber, err)
			}

			order, err := r.backends.Commerce.GetOrder(ctx, r.session.Credentials, in.DisplayID)
			if err != nil {
				return model.ToolResult{
					Content: fmt.Sprintf("Order #%d not found.", in.DisplayID),
					Err:     err.Error(),
				}
			}

			placed := order.PlacedAt
			if placed == "" {
				placed = "N/A"
			}

			var b strings.Builder
			fmt.Fprintf(&b, "**Order #%d** - %s %s\n\n", order.DisplayID, amount(order.OverallPrice), order.CurrencyCode)
			fmt.Fprintf(&b, "Fulfillment: %s\n", titleCase(order.FulfillmentStatus))
			fmt.Fprintf(&b, "Payment: %s\n", titleCase(order.PaymentStatus))
			fmt.Fprintf(&b, "Placed: %s\n\n", placed)

			fmt.Fprintf(&b, "**Items** (%d):\n", len(order.Products))
			for i, product := range order.Products {
				fmt.Fprintf(&b, "%d. %s", i+1, product.Title)
				if product.Variant != "" {
					fmt.Fprintf(&b, " (%s)", product.Variant)
				}
				fmt.Fprintf(&b, "\n   Qty: %d × %s = %s\n", product.Quantity, amount(product.UnitPrice), amount(product.LineTotal))
			}

			content := fmt.Sprintf("Here's the details for Order #%d:\n\n%s", order.DisplayID, wrapHidden(b.String()))
			return model.ToolResult{
				Content: content,
				Payload: &model.Payload{Type: model.PayloadOrderSingle, Order: order},
			}
		},
	}
}
