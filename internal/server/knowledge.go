package server

import (
	"fmt"
	"net/http"

	"github.com/medusa-chatbot/server/internal/rag"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

type ingestRequest struct {
	QnAPairs []rag.QnAPair `json:"qna_pairs"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.QnAPairs) == 0 {
		respondError(w, http.StatusBadRequest, "qna_pairs is required")
		return
	}

	count, err := s.knowledge.Ingest(r.Context(), req.QnAPairs)
	if err != nil {
		logx.Error().Err(err).Msg("Knowledge ingest failed")
		respondFailure(w, err)
		return
	}

	logx.Info().Int("count", count).Msg("Ingested Q&A pairs")
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"count":   count,
		"message": fmt.Sprintf("Successfully ingested %d Q&A pairs", count),
	})
}

func (s *Server) handleKnowledgeInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.knowledge.Info(r.Context())
	if err != nil {
		respondFailure(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleKnowledgeDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.knowledge.DeleteAll(r.Context()); err != nil {
		logx.Error().Err(err).Msg("Knowledge base delete failed")
		respondFailure(w, err)
		return
	}

	logx.Info().Msg("Knowledge base cleared")
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Knowledge base cleared",
	})
}
