package model

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// NoContextMarker is emitted when no metadata field is populated, so the
	// system prompt stays deterministic between "no context yet" and
	// "context present".
	NoContextMarker = "No previous context"

	maxContextProducts = 3
	maxContextIDs      = 5
	maxContextVariants = 2
	maxVariantsPerProd = 5
	maxFoldedProducts  = 3
)

// VariantInfo is the simplified variant shape kept in metadata.
type VariantInfo struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Options map[string]string `json:"options,omitempty"`
}

// Metadata is the rolling contextual summary of one conversation, distilled
// from structured tool payloads. It is monotonically enriched: folding only
// adds entries or overwrites same-key values with fresher observations, never
// clears anything mid-conversation.
//
// Go maps are unordered, so insertion order for the id map and the variant
// catalog is carried in explicit order slices; overwriting an existing key
// keeps its original position.
type Metadata struct {
	ProductsDiscussed []string                 `json:"products_discussed,omitempty"`
	ProductIDMap      map[string]string        `json:"product_id_map,omitempty"`
	ProductIDOrder    []string                 `json:"product_id_order,omitempty"`
	ProductVariants   map[string][]VariantInfo `json:"product_variants,omitempty"`
	VariantOrder      []string                 `json:"variant_order,omitempty"`
	ToolsUsed         []string                 `json:"tools_used,omitempty"`
	LastSearchQuery   string                   `json:"last_search_query,omitempty"`
	CartItemsCount    *int                     `json:"cart_items_count,omitempty"`
	CustomerName      string                   `json:"customer_name,omitempty"`

	// ConversationStarted is an opaque audit fingerprint derived from the
	// caller identity on first contact. Not used for business logic.
	ConversationStarted string `json:"conversation_started,omitempty"`
}

// Fold applies one dispatch step's results to the metadata, in result order.
func (m *Metadata) Fold(results []ToolResult) {
	for _, res := range results {
		if res.ToolName != "" {
			m.MarkToolUsed(res.ToolName)
		}
		if res.Payload == nil {
			continue
		}
		m.foldPayload(res.Payload)
	}
}

func (m *Metadata) foldPayload(p *Payload) {
	switch p.Type {
	case PayloadSearch, PayloadPriceSearch:
		limit := len(p.Products)
		if limit > maxFoldedProducts {
			limit = maxFoldedProducts
		}
		for _, product := range p.Products[:limit] {
			if product.Title == "" {
				continue
			}
			m.addProductDiscussed(product.Title)
			if product.ID != "" {
				m.mapProductID(product.Title, product.ID)
			}
		}
		if p.Query != "" {
			query := p.Query
			if p.Type == PayloadPriceSearch {
				query = fmt.Sprintf("%s (under $%g)", p.Query, p.MaxPrice)
			}
			m.LastSearchQuery = query
		}

	case PayloadProductDetails:
		product := p.Product
		if product == nil || product.ID == "" || len(product.Variants) == 0 {
			return
		}
		simplified := make([]VariantInfo, 0, len(product.Variants))
		for _, v := range product.Variants {
			simplified = append(simplified, VariantInfo{ID: v.ID, Title: v.Title, Options: v.Options})
		}
		m.setVariants(product.ID, simplified)
		if product.Title != "" {
			m.addProductDiscussed(product.Title)
			m.mapProductID(product.Title, product.ID)
		}

	case PayloadCart, PayloadCartUpdated:
		if p.Cart == nil {
			return
		}
		count := p.Cart.ItemsCount
		if count == 0 {
			count = len(p.Cart.Items)
		}
		m.CartItemsCount = &count

	case PayloadCustomerInfo:
		customer := p.Customer
		if customer == nil || customer.FirstName == "" {
			return
		}
		m.CustomerName = strings.TrimSpace(customer.FirstName + " " + customer.LastName)
	}
	// Unknown payload types are a no-op, not an error.
}

// MarkToolUsed unions a tool name into the ordered tools_used set.
func (m *Metadata) MarkToolUsed(name string) {
	for _, existing := range m.ToolsUsed {
		if existing == name {
			return
		}
	}
	m.ToolsUsed = append(m.ToolsUsed, name)
}

func (m *Metadata) addProductDiscussed(title string) {
	for _, existing := range m.ProductsDiscussed {
		if existing == title {
			return
		}
	}
	m.ProductsDiscussed = append(m.ProductsDiscussed, title)
}

// mapProductID records lowercase(title) -> id, last write wins. Overwriting
// keeps the key's original insertion position.
func (m *Metadata) mapProductID(title, id string) {
	key := strings.ToLower(title)
	if m.ProductIDMap == nil {
		m.ProductIDMap = make(map[string]string)
	}
	if _, exists := m.ProductIDMap[key]; !exists {
		m.ProductIDOrder = append(m.ProductIDOrder, key)
	}
	m.ProductIDMap[key] = id
}

func (m *Metadata) setVariants(productID string, variants []VariantInfo) {
	if m.ProductVariants == nil {
		m.ProductVariants = make(map[string][]VariantInfo)
	}
	if _, exists := m.ProductVariants[productID]; !exists {
		m.VariantOrder = append(m.VariantOrder, productID)
	}
	m.ProductVariants[productID] = variants
}

// ContextLines renders the metadata as the ordered preamble injected ahead of
// every decision step. Sections backed by empty fields are omitted.
func (m *Metadata) ContextLines() []string {
	var lines []string

	if n := len(m.ProductsDiscussed); n > 0 {
		recent := m.ProductsDiscussed
		if n > maxContextProducts {
			recent = recent[n-maxContextProducts:]
		}
		lines = append(lines, "Products recently discussed: "+strings.Join(recent, ", "))
	}

	if n := len(m.ProductIDOrder); n > 0 {
		keys := m.ProductIDOrder
		if n > maxContextIDs {
			keys = keys[n-maxContextIDs:]
		}
		entries := make([]string, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, fmt.Sprintf("'%s': %s", key, m.ProductIDMap[key]))
		}
		lines = append(lines, "Product IDs: "+strings.Join(entries, ", "))
	}

	if n := len(m.VariantOrder); n > 0 {
		ids := m.VariantOrder
		if n > maxContextVariants {
			ids = ids[n-maxContextVariants:]
		}
		var rendered []string
		for _, productID := range ids {
			variants := m.ProductVariants[productID]
			if len(variants) > maxVariantsPerProd {
				variants = variants[:maxVariantsPerProd]
			}
			for _, v := range variants {
				parts := make([]string, 0, 1+len(v.Options))
				parts = append(parts, "ID: "+v.ID)
				for _, key := range sortedKeys(v.Options) {
					parts = append(parts, key+"="+v.Options[key])
				}
				rendered = append(rendered, fmt.Sprintf("%s (%s)", v.Title, strings.Join(parts, ", ")))
			}
		}
		if len(rendered) > 0 {
			lines = append(lines, "Available variants: "+strings.Join(rendered, "; "))
		}
	}

	if m.LastSearchQuery != "" {
		lines = append(lines, fmt.Sprintf("Last search: '%s'", m.LastSearchQuery))
	}
	if m.CartItemsCount != nil && *m.CartItemsCount > 0 {
		lines = append(lines, fmt.Sprintf("Cart has %d items", *m.CartItemsCount))
	}
	if m.CustomerName != "" {
		lines = append(lines, "Customer: "+m.CustomerName)
	}

	return lines
}

// ContextPrompt joins the context lines, or returns the explicit no-context
// marker when every field is empty.
func (m *Metadata) ContextPrompt() string {
	lines := m.ContextLines()
	if len(lines) == 0 {
		return NoContextMarker
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// option maps carry no insertion order; sort for stable rendering
	sort.Strings(keys)
	return keys
}
