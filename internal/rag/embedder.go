package rag

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	errx "github.com/medusa-chatbot/server/internal/core/error"
)

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeminiEmbedder embeds text with the Gemini embeddings API, reusing the
// genai client the chat models are built on.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dim    int32
}

// NewGeminiEmbedder creates an embedder for the given model. dim truncates
// the output vector so it matches the collection's configured size.
func NewGeminiEmbedder(client *genai.Client, model string, dim int) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model, dim: int32(dim)}
}

// Embed implements Embedder.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{}
	if e.dim > 0 {
		cfg.OutputDimensionality = genai.Ptr(e.dim)
	}
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	if err != nil {
		return nil, errx.Upstream("embeddings", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errx.Upstream("embeddings", fmt.Errorf("empty embedding for %q", text))
	}
	return resp.Embeddings[0].Values, nil
}
