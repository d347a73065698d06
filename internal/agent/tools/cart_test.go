package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/commerce"
)

func amt(v float64) *float64 { return &v }

func TestGetMyCartWithoutCartID(t *testing.T) {
	r := NewRegistry(Backends{}, Session{}, model.KnowledgeConfig{})
	results := r.Dispatch(context.Background(), []schema.ToolCall{call(ToolGetMyCart, "")})

	if results[0].Err != "" {
		t.Fatalf("missing cart id is guidance, not an error: %q", results[0].Err)
	}
	if !strings.Contains(results[0].Content, "No cart ID provided") {
		t.Errorf("Content = %q", results[0].Content)
	}
}

func TestGetMyCartEmpty(t *testing.T) {
	fc := &fakeCommerce{cart: &commerce.Cart{CartID: "cart_1"}}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{call(ToolGetMyCart, "")})

	if results[0].Content != "Your cart is empty." {
		t.Errorf("Content = %q", results[0].Content)
	}
	if results[0].Payload == nil || results[0].Payload.Type != model.PayloadCart {
		t.Errorf("empty cart still carries a payload, got %+v", results[0].Payload)
	}
}

func TestGetMyCartRendersItems(t *testing.T) {
	fc := &fakeCommerce{cart: &commerce.Cart{
		CartID:     "cart_1",
		ItemsCount: 2,
		Totals:     commerce.CartTotals{Total: 45},
		Items: []commerce.CartItem{
			{ProductTitle: "Sweatshirt", VariantTitle: "M", Quantity: 1, UnitPrice: 25, Subtotal: 25},
			{ProductTitle: "Cap", Quantity: 2, UnitPrice: 10, Subtotal: 20},
		},
	}}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{call(ToolGetMyCart, "")})
	content := results[0].Content

	if !strings.HasPrefix(content, "Here's your shopping cart with 2 items:") {
		t.Errorf("summary line missing: %q", content)
	}
	for _, want := range []string{
		"{Your Shopping Cart (2 items):",
		"1. Sweatshirt - M\n   Quantity: 1 × 25 = 25",
		"2. Cap\n   Quantity: 2 × 10 = 20",
		"Total: 45}",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}

func TestAddProductMultipleVariantsAsksInsteadOfAdding(t *testing.T) {
	fc := &fakeCommerce{product: &commerce.Product{
		ID:    "prod_1",
		Title: "Sweatshirt",
		Variants: []commerce.Variant{
			{ID: "var_1", Title: "S", Price: &commerce.VariantPrice{Amount: amt(25), CurrencyCode: "usd"}},
			{ID: "var_2", Title: "M"},
		},
	}}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolAddProductToCart, `{"product_id":"prod_1"}`),
	})
	res := results[0]

	if len(fc.addCalls) != 0 {
		t.Fatalf("must not add to cart before the user picks a variant, got %v", fc.addCalls)
	}
	if res.Payload == nil || res.Payload.Type != model.PayloadProductDetails {
		t.Fatalf("payload = %+v, want product details", res.Payload)
	}
	if !strings.Contains(res.Content, "**Sweatshirt** - Choose your variant:") {
		t.Errorf("missing picker header:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "$25.00 USD") {
		t.Errorf("priced variant missing:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "N/A") {
		t.Errorf("unpriced variant should show N/A:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "```") {
		t.Errorf("variant table must be fenced:\n%s", res.Content)
	}
}

func TestAddProductSingleVariantAutoSelects(t *testing.T) {
	fc := &fakeCommerce{
		product: &commerce.Product{
			ID:       "prod_1",
			Title:    "Sweatshirt",
			Variants: []commerce.Variant{{ID: "var_1", Title: "One Size"}},
		},
		cart: &commerce.Cart{
			ItemsCount: 1,
			Totals:     commerce.CartTotals{Total: 25},
			Items: []commerce.CartItem{
				{VariantID: "var_1", ProductTitle: "Sweatshirt", VariantTitle: "One Size", Quantity: 1, UnitPrice: 25},
			},
		},
	}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolAddProductToCart, `{"product_id":"prod_1"}`),
	})
	res := results[0]

	if len(fc.addCalls) != 1 || fc.addCalls[0] != "var_1" {
		t.Fatalf("addCalls = %v, want the single variant auto-added", fc.addCalls)
	}
	if !strings.HasPrefix(res.Content, "Added to cart!") {
		t.Errorf("Content = %q", res.Content)
	}
	if !strings.Contains(res.Content, "📦 Sweatshirt - One Size") {
		t.Errorf("added item line missing:\n%s", res.Content)
	}
	if !strings.Contains(res.Content, "Cart: 1 items | Total: 25") {
		t.Errorf("cart summary missing:\n%s", res.Content)
	}
	if res.Payload == nil || res.Payload.Type != model.PayloadCartUpdated {
		t.Errorf("payload = %+v, want cart_updated", res.Payload)
	}
}

func TestAddProductNoVariants(t *testing.T) {
	fc := &fakeCommerce{product: &commerce.Product{ID: "prod_1", Title: "Sweatshirt"}}
	r := testRegistry(Backends{Commerce: fc})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolAddProductToCart, `{"product_id":"prod_1"}`),
	})

	if results[0].Content != "This product has no available variants." {
		t.Errorf("Content = %q", results[0].Content)
	}
}

func TestAddProductNeitherIDProvided(t *testing.T) {
	r := testRegistry(Backends{Commerce: &fakeCommerce{}})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolAddProductToCart, `{}`),
	})

	if !strings.Contains(results[0].Content, "Please specify which product variant") {
		t.Errorf("Content = %q", results[0].Content)
	}
}
