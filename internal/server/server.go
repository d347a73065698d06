package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/agent/tools"
	"github.com/medusa-chatbot/server/internal/observability"
	"github.com/medusa-chatbot/server/internal/rag"
)

// ChatEngine is the orchestration surface the HTTP layer depends on.
type ChatEngine interface {
	ProcessQuery(ctx context.Context, in model.QueryInput) (*model.QueryOutput, error)
	ClearConversation(ctx context.Context, conversationID string) error
}

// KnowledgeAdmin is the knowledge base management surface.
type KnowledgeAdmin interface {
	Ingest(ctx context.Context, pairs []rag.QnAPair) (int, error)
	Info(ctx context.Context) (*rag.CollectionInfo, error)
	DeleteAll(ctx context.Context) error
}

// Server exposes the chat assistant and the direct store passthroughs.
type Server struct {
	engine    ChatEngine
	commerce  tools.CommerceAPI
	knowledge KnowledgeAdmin
}

func New(engine ChatEngine, commerce tools.CommerceAPI, knowledge KnowledgeAdmin) *Server {
	return &Server{
		engine:    engine,
		commerce:  commerce,
		knowledge: knowledge,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/chat", s.handleChat)
	r.Delete("/chat/clear/{thread_id}", s.handleClearConversation)

	// Direct passthroughs, no AI processing.
	r.Get("/orders", s.handleListOrders)
	r.Get("/orders/{display_id}", s.handleGetOrder)
	r.Get("/cart", s.handleGetCart)
	r.Post("/cart/{cart_id}/add", s.handleAddToCart)
	r.Get("/customer/me", s.handleGetCustomer)
	r.Get("/products/{product_id}", s.handleGetProduct)

	// Knowledge base management.
	r.Post("/ingest", s.handleIngest)
	r.Get("/knowledge-base/info", s.handleKnowledgeInfo)
	r.Delete("/knowledge-base", s.handleKnowledgeDelete)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "Medusa Store Chatbot API",
	})
}
