package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/search"
)

const (
	defaultSearchLimit = 5
	descPreviewLen     = 100
)

func (r *Registry) searchProductsSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolSearchProducts,
			Desc: "Search for products. Use when user asks about products, wants to find or search items.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The search query (e.g., \"tshirt\", \"shoes\", \"jeans\")",
					Required: true,
				},
				"limit": {
					Type: "number",
					Desc: "Maximum number of products to show (default: 5)",
				},
			}),
		},
		Run: func(ctx context.Context, args json.RawMessage) model.ToolResult {
			var in struct {
				Query string `json:"query"`
				Limit int    `json:"limit,omitempty"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgs(ToolSearchProducts, err)
			}
			in.Query = strings.TrimSpace(in.Query)
			if in.Limit <= 0 {
				in.Limit = defaultSearchLimit
			}

			result, err := r.backends.Search.Search(ctx, in.Query, in.Limit)
			if err != nil {
				return model.ToolResult{Content: "Error searching for products: " + err.Error(), Err: err.Error()}
			}

			payload := &model.Payload{Type: model.PayloadSearch, Query: in.Query, Products: result.Products}
			if len(result.Products) == 0 {
				return model.ToolResult{
					Content: fmt.Sprintf("No products found for '%s'. Try a different search term.", in.Query),
					Payload: payload,
				}
			}

			header := fmt.Sprintf("🔍 Found %d product(s) for '%s':\n\n", result.TotalHits, in.Query)
			return model.ToolResult{
				Content: header + renderSearchHits(result.Products),
				Payload: payload,
			}
		},
	}
}

func (r *Registry) searchByPriceSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolSearchByPrice,
			Desc: "Search for products under a specific price. Use when user mentions price like 'under $50', 'less than $20', 'cheap products'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The search query (e.g., \"tshirt\", \"shoes\", \"jeans\")",
					Required: true,
				},
				"max_price": {
					Type:     "number",
					Desc:     "Maximum price in dollars (e.g., 50 for \"under $50\")",
					Required: true,
				},
				"limit": {
					Type: "number",
					Desc: "Maximum number of products to show (default: 5)",
				},
			}),
		},
		Run: func(ctx context.Context, args json.RawMessage) model.ToolResult {
			var in struct {
				Query    string  `json:"query"`
				MaxPrice float64 `json:"max_price"`
				Limit    int     `json:"limit,omitempty"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgs(ToolSearchByPrice, err)
			}
			in.Query = strings.TrimSpace(in.Query)
			if in.Limit <= 0 {
				in.Limit = defaultSearchLimit
			}

			result, err := r.backends.Search.SearchByPrice(ctx, in.Query, in.MaxPrice, in.Limit)
			if err != nil {
				return model.ToolResult{Content: "Error searching for products: " + err.Error(), Err: err.Error()}
			}

			payload := &model.Payload{
				Type:     model.PayloadPriceSearch,
				Query:    in.Query,
				MaxPrice: in.MaxPrice,
				Products: result.Products,
			}
			if len(result.Products) == 0 {
				return model.ToolResult{
					Content: fmt.Sprintf("No products found for '%s' under $%g. Try a different search or higher price.", in.Query, in.MaxPrice),
					Payload: payload,
				}
			}

			header := fmt.Sprintf("🔍 Found %d product(s) for '%s' under $%g:\n\n", result.TotalHits, in.Query, in.MaxPrice)
			return model.ToolResult{
				Content: header + renderSearchHits(result.Products),
				Payload: payload,
			}
		},
	}
}

func renderSearchHits(products []search.Product) string {
	var b strings.Builder
	for i, product := range products {
		title := product.Title
		if title == "" {
			title = "Untitled Product"
		}
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, title)

		if product.Description != "" {
			fmt.Fprintf(&b, "   %s\n", preview(product.Description, descPreviewLen))
		}
		if product.MinimumPrice > 0 {
			fmt.Fprintf(&b, "   Starting at: $%.2f\n", product.MinimumPrice)
		}
		if len(product.Categories) > 0 {
			names := make([]string, 0, len(product.Categories))
			for _, cat := range product.Categories {
				if cat.Name != "" {
					names = append(names, cat.Name)
				}
			}
			if len(names) > 0 {
				fmt.Fprintf(&b, "   Category: %s\n", strings.Join(names, ", "))
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
