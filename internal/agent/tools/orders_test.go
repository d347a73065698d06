package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/commerce"
)

func TestGetMyOrdersEmpty(t *testing.T) {
	r := testRegistry(Backends{Commerce: &fakeCommerce{}})
	results := r.Dispatch(context.Background(), []schema.ToolCall{call(ToolGetMyOrders, "{}")})

	if results[0].Content != "You don't have any orders yet." {
		t.Errorf("Content = %q", results[0].Content)
	}
	if results[0].Payload == nil || results[0].Payload.Type != model.PayloadOrderList {
		t.Errorf("payload = %+v, want order list", results[0].Payload)
	}
}

func TestGetMyOrdersRendersSummaries(t *testing.T) {
	fc := &fakeCommerce{orders: []commerce.Order{
		{DisplayID: 12, OverallPrice: 45, CurrencyCode: "usd", FulfillmentStatus: "not_fulfilled", PaymentStatus: "captured"},
		{DisplayID: 11, OverallPrice: 20, CurrencyCode: "usd", FulfillmentStatus: "shipped", PaymentStatus: "captured"},
	}}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{call(ToolGetMyOrders, "{}")})
	content := results[0].Content

	if !strings.HasPrefix(content, "Here are your 2 order(s):") {
		t.Errorf("summary line missing: %q", content)
	}
	for _, want := range []string{
		"**Order #12** - 45 usd",
		"Fulfillment: Not Fulfilled • Payment: Captured",
		"**Order #11** - 20 usd",
		"Fulfillment: Shipped • Payment: Captured",
		"just ask about the specific order number!",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}

func TestGetMyOrdersBackendFailure(t *testing.T) {
	fc := &fakeCommerce{orderErr: errors.New("store unreachable")}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{call(ToolGetMyOrders, "{}")})

	if results[0].Err == "" {
		t.Fatal("backend failure should be carried in the result")
	}
	if !strings.HasPrefix(results[0].Content, "Unable to fetch orders:") {
		t.Errorf("Content = %q", results[0].Content)
	}
}

func TestGetOrderByNumberNotFound(t *testing.T) {
	fc := &fakeCommerce{orderErr: errors.New("404")}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolGetOrderByNumber, `{"display_id":99}`),
	})

	if results[0].Content != "Order #99 not found." {
		t.Errorf("Content = %q", results[0].Content)
	}
	if results[0].Err == "" {
		t.Error("lookup failure should carry its error")
	}
}

func TestGetOrderByNumberDetail(t *testing.T) {
	fc := &fakeCommerce{order: &commerce.Order{
		DisplayID:         12,
		OverallPrice:      45,
		CurrencyCode:      "usd",
		FulfillmentStatus: "not_fulfilled",
		PaymentStatus:     "captured",
		Products: []commerce.OrderItem{
			{Title: "Sweatshirt", Variant: "M", Quantity: 1, UnitPrice: 25, LineTotal: 25},
			{Title: "Cap", Quantity: 2, UnitPrice: 10, LineTotal: 20},
		},
	}}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolGetOrderByNumber, `{"display_id":12}`),
	})
	content := results[0].Content

	if !strings.HasPrefix(content, "Here's the details for Order #12:") {
		t.Errorf("summary line missing: %q", content)
	}
	for _, want := range []string{
		"{**Order #12** - 45 usd",
		"Fulfillment: Not Fulfilled\nPayment: Captured\nPlaced: N/A",
		"**Items** (2):",
		"1. Sweatshirt (M)\n   Qty: 1 × 25 = 25",
		"2. Cap\n   Qty: 2 × 10 = 20",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
	if results[0].Payload == nil || results[0].Payload.Type != model.PayloadOrderSingle {
		t.Errorf("payload = %+v, want single order", results[0].Payload)
	}
}
