package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	errx "github.com/medusa-chatbot/server/internal/core/error"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// minRankingScore drops low-relevance hits; Meilisearch returns a
// normalised [0,1] ranking score per hit.
const minRankingScore = 0.5

// Config holds the full-text search backend settings.
type Config struct {
	Host   string `envconfig:"MEILISEARCH_HOST" default:"http://localhost:7700"`
	APIKey string `envconfig:"MEILISEARCH_API_KEY"`
	Index  string `envconfig:"MEILISEARCH_INDEX" default:"products"`
}

// Category is a product category as indexed in search documents.
type Category struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Product is one ranked search hit, reshaped for tools and metadata folding.
type Product struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Handle       string     `json:"handle,omitempty"`
	Thumbnail    string     `json:"thumbnail,omitempty"`
	MinimumPrice float64    `json:"minimum_price,omitempty"`
	Categories   []Category `json:"categories,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	RankingScore float64    `json:"ranking_score"`
}

// Result is a reshaped search response.
type Result struct {
	Query            string    `json:"query"`
	MaxPrice         float64   `json:"max_price,omitempty"`
	TotalHits        int64     `json:"total_hits"`
	Products         []Product `json:"products"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
}

// Client adapts the Meilisearch product index. Ranking is owned by the
// backend; this adapter only filters and reshapes hits.
type Client struct {
	index meilisearch.IndexManager
}

// New creates a search client for the configured index.
func New(cfg Config) *Client {
	sm := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	return &Client{index: sm.Index(cfg.Index)}
}

// Search runs a plain full-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) (*Result, error) {
	return c.search(ctx, query, 0, limit, nil)
}

// SearchByPrice runs a full-text query constrained to products whose minimum
// price is below maxPrice.
func (c *Client) SearchByPrice(ctx context.Context, query string, maxPrice float64, limit int) (*Result, error) {
	filter := fmt.Sprintf("minimum_price < %g", maxPrice)
	return c.search(ctx, query, maxPrice, limit, filter)
}

func (c *Client) search(ctx context.Context, query string, maxPrice float64, limit int, filter any) (*Result, error) {
	if limit <= 0 {
		limit = 10
	}
	req := &meilisearch.SearchRequest{
		Limit:            int64(limit),
		ShowRankingScore: true,
	}
	if filter != nil {
		req.Filter = filter
	}

	resp, err := c.index.SearchWithContext(ctx, query, req)
	if err != nil {
		logx.Error().Err(err).Str("query", query).Msg("meilisearch query failed")
		return nil, errx.Upstream("search", err)
	}

	products, err := decodeHits(resp.Hits)
	if err != nil {
		return nil, errx.Upstream("search", err)
	}
	return &Result{
		Query:            query,
		MaxPrice:         maxPrice,
		TotalHits:        resp.EstimatedTotalHits,
		Products:         products,
		ProcessingTimeMs: resp.ProcessingTimeMs,
	}, nil
}

// decodeHits reshapes raw hits into Products, dropping hits at or below the
// ranking score floor.
func decodeHits(hits []interface{}) ([]Product, error) {
	products := make([]Product, 0, len(hits))
	for i, hit := range hits {
		b, err := json.Marshal(hit)
		if err != nil {
			return nil, fmt.Errorf("encode hit %d: %w", i, err)
		}
		var doc struct {
			Product
			RankingScore float64 `json:"_rankingScore"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("decode hit %d: %w", i, err)
		}
		if doc.RankingScore <= minRankingScore {
			continue
		}
		p := doc.Product
		p.RankingScore = doc.RankingScore
		products = append(products, p)
	}
	return products, nil
}
