package tools

import (
	"context"

	"github.com/medusa-chatbot/server/internal/commerce"
	"github.com/medusa-chatbot/server/internal/rag"
	"github.com/medusa-chatbot/server/internal/search"
)

// CommerceAPI is the store backend surface the tools call into.
type CommerceAPI interface {
	GetCart(ctx context.Context, cartID string, creds commerce.Credentials) (*commerce.Cart, error)
	AddToCart(ctx context.Context, cartID, variantID string, quantity int, creds commerce.Credentials) (*commerce.Cart, error)
	ListOrders(ctx context.Context, creds commerce.Credentials, limit, offset int) ([]commerce.Order, error)
	GetOrder(ctx context.Context, creds commerce.Credentials, displayID int) (*commerce.Order, error)
	GetCustomer(ctx context.Context, creds commerce.Credentials) (*commerce.Customer, error)
	GetProduct(ctx context.Context, productID string, creds commerce.Credentials) (*commerce.Product, error)
}

// SearchAPI is the product search surface.
type SearchAPI interface {
	Search(ctx context.Context, query string, limit int) (*search.Result, error)
	SearchByPrice(ctx context.Context, query string, maxPrice float64, limit int) (*search.Result, error)
}

// KnowledgeAPI is the knowledge base retrieval surface.
type KnowledgeAPI interface {
	Retrieve(ctx context.Context, query string, limit int, threshold float32) ([]rag.QnA, error)
}

// Backends bundles the external services behind the tool set.
type Backends struct {
	Commerce  CommerceAPI
	Search    SearchAPI
	Knowledge KnowledgeAPI
}

// Session binds a registry to one caller for one turn. CartID may be empty;
// cart tools then answer with an instruction instead of failing.
type Session struct {
	Credentials commerce.Credentials
	CartID      string
}
