package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/observability"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// ChatRequest is one user turn. ThreadID is optional; a fresh conversation id
// is generated when absent and returned so the client can continue the thread.
type ChatRequest struct {
	Query          string `json:"query"`
	AuthToken      string `json:"auth_token"`
	PublishableKey string `json:"x_publishable_api_key"`
	CartID         string `json:"cart_id,omitempty"`
	ThreadID       string `json:"thread_id,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.AuthToken == "" || req.PublishableKey == "" {
		respondError(w, http.StatusBadRequest, "auth_token and x_publishable_api_key are required")
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	logx.Info().
		Str("thread_id", threadID).
		Str("cart_id", req.CartID).
		Msg("Chat request")

	start := time.Now()
	out, err := s.engine.ProcessQuery(r.Context(), model.QueryInput{
		ConversationID: threadID,
		Query:          req.Query,
		AuthToken:      req.AuthToken,
		PublishableKey: req.PublishableKey,
		CartID:         req.CartID,
	})
	observability.TurnLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ChatTurns.WithLabelValues("error").Inc()
		logx.Error().Str("thread_id", threadID).Err(err).Msg("Chat turn failed")
		respondFailure(w, err)
		return
	}
	observability.ChatTurns.WithLabelValues("ok").Inc()

	logx.Info().
		Str("thread_id", threadID).
		Strs("tools_used", out.ToolsUsed).
		Float64("cost_usd", out.CostUSD).
		Msg("Chat response")

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "thread_id")
	if strings.TrimSpace(threadID) == "" {
		respondError(w, http.StatusBadRequest, "thread_id is required")
		return
	}

	if err := s.engine.ClearConversation(r.Context(), threadID); err != nil {
		logx.Error().Str("thread_id", threadID).Err(err).Msg("Clear conversation failed")
		respondFailure(w, err)
		return
	}

	logx.Info().Str("thread_id", threadID).Msg("Cleared conversation state")
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("Conversation state cleared for thread %s", threadID),
	})
}
