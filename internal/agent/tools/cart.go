package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/commerce"
)

func (r *Registry) getMyCartSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolGetMyCart,
			Desc: "Get the shopping cart with all items. Use when user asks about their cart, shopping cart, or items in cart.",
		},
		Run: func(ctx context.Context, _ json.RawMessage) model.ToolResult {
			if r.session.CartID == "" {
				return model.ToolResult{Content: "No cart ID provided. Please provide a cart ID to view your cart."}
			}

			cart, err := r.backends.Commerce.GetCart(ctx, r.session.CartID, r.session.Credentials)
			if err != nil {
				return model.ToolResult{Content: "❌ " + err.Error(), Err: err.Error()}
			}

			payload := &model.Payload{Type: model.PayloadCart, Cart: cart}
			if len(cart.Items) == 0 {
				return model.ToolResult{Content: "Your cart is empty.", Payload: payload}
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Your Shopping Cart (%d items):\n\n", len(cart.Items))
			for i, item := range cart.Items {
				fmt.Fprintf(&b, "%d. %s", i+1, item.ProductTitle)
				if item.VariantTitle != "" {
					b.WriteString(" - " + item.VariantTitle)
				}
				fmt.Fprintf(&b, "\n   Quantity: %d × %s = %s\n", item.Quantity, amount(item.UnitPrice), amount(item.Subtotal))
			}
			fmt.Fprintf(&b, "\nTotal: %s", amount(cart.Totals.Total))

			content := fmt.Sprintf("Here's your shopping cart with %d items:\n\n%s", len(cart.Items), wrapHidden(b.String()))
			return model.ToolResult{Content: content, Payload: payload}
		},
	}
}

type addProductInput struct {
	ProductID string `json:"product_id,omitempty"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (r *Registry) addProductToCartSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolAddProductToCart,
			Desc: "Add a product to cart. When user wants to add items/buy products, first check if product has variants. " +
				"Flow: 1) If only product_id provided, check if product has multiple variants. " +
				"2) If multiple variants, ask user to specify which variant they want. " +
				"3) If single variant or variant_id provided, add to cart.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"product_id": {
					Type: "string",
					Desc: "Product ID (use this to check for variants first)",
				},
				"variant_id": {
					Type: "string",
					Desc: "Specific variant ID (use only when user has selected a variant or product has single variant)",
				},
				"quantity": {
					Type: "number",
					Desc: "Quantity to add (default: 1)",
				},
			}),
		},
		Run: func(ctx context.Context, args json.RawMessage) model.ToolResult {
			var in addProductInput
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgs(ToolAddProductToCart, err)
			}
			if r.session.CartID == "" {
				return model.ToolResult{Content: "No cart ID provided. Please provide a cart ID to add items."}
			}
			if in.Quantity <= 0 {
				in.Quantity = 1
			}

			// Variant discovery path: with only a product id, look the product
			// up and either pick its single variant or ask the user to choose.
			if in.ProductID != "" && in.VariantID == "" {
				product, err := r.backends.Commerce.GetProduct(ctx, in.ProductID, r.session.Credentials)
				if err != nil {
					return model.ToolResult{Content: err.Error(), Err: err.Error()}
				}

				switch len(product.Variants) {
				case 0:
					return model.ToolResult{Content: "This product has no available variants."}
				case 1:
					in.VariantID = product.Variants[0].ID
				default:
					return model.ToolResult{
						Content: renderVariantChoice(product),
						Payload: &model.Payload{Type: model.PayloadProductDetails, Product: product},
					}
				}
			}

			if in.VariantID == "" {
				return model.ToolResult{Content: "Please specify which product variant you'd like to add to cart."}
			}

			cart, err := r.backends.Commerce.AddToCart(ctx, r.session.CartID, in.VariantID, in.Quantity, r.session.Credentials)
			if err != nil {
				return model.ToolResult{Content: err.Error(), Err: err.Error()}
			}

			var b strings.Builder
			for _, item := range cart.Items {
				if item.VariantID != in.VariantID {
					continue
				}
				fmt.Fprintf(&b, "📦 %s", item.ProductTitle)
				if item.VariantTitle != "" {
					b.WriteString(" - " + item.VariantTitle)
				}
				fmt.Fprintf(&b, "\n   Quantity: %d\n", item.Quantity)
				fmt.Fprintf(&b, "   Price: %s\n\n", amount(item.UnitPrice))
				break
			}
			fmt.Fprintf(&b, "Cart: %d items | Total: %s", cart.ItemsCount, amount(cart.Totals.Total))

			return model.ToolResult{
				Content: "Added to cart!\n\n" + wrapHidden(b.String()),
				Payload: &model.Payload{Type: model.PayloadCartUpdated, Cart: cart},
			}
		},
	}
}

// renderVariantChoice builds the variant picker table inside a fenced code
// block so the chat surface preserves column alignment.
func renderVariantChoice(product *commerce.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** - Choose your variant:\n\n```\n", product.Title)
	fmt.Fprintf(&b, "%-4s %-20s %-15s\n", "#", "Variant", "Price")
	b.WriteString(strings.Repeat("─", 50) + "\n")

	for i, v := range product.Variants {
		price := "N/A"
		if v.Price != nil && v.Price.Amount != nil {
			currency := v.Price.CurrencyCode
			if currency == "" {
				currency = "USD"
			}
			price = fmt.Sprintf("$%.2f %s", *v.Price.Amount, strings.ToUpper(currency))
		}
		fmt.Fprintf(&b, "%-4d %-20s %-15s\n", i+1, v.Title, price)
	}

	b.WriteString("```\n\n")
	b.WriteString("Please tell me which variant you'd like (e.g., 'add variant 1' or 'add the small white one').")
	return b.String()
}
