package rag

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	errx "github.com/medusa-chatbot/server/internal/core/error"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// Config holds the knowledge base backend settings.
type Config struct {
	URL        string `envconfig:"QDRANT_URL" default:"http://localhost:6334"`
	APIKey     string `envconfig:"QDRANT_API_KEY"`
	Collection string `envconfig:"QDRANT_COLLECTION" default:"medusa_qna"`
	VectorSize int    `envconfig:"QDRANT_VECTOR_SIZE" default:"768"`
	EmbedModel string `envconfig:"EMBED_MODEL" default:"gemini-embedding-001"`
}

// QnAPair is one question/answer entry for ingestion.
type QnAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QnA is one retrieved knowledge base entry with its similarity score.
type QnA struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float32 `json:"score"`
}

// CollectionInfo summarises the knowledge base collection.
type CollectionInfo struct {
	Collection  string `json:"collection"`
	PointsCount uint64 `json:"points_count"`
	Status      string `json:"status"`
}

// Store is the vector knowledge base: Q&A pairs embedded into a Qdrant
// collection, retrieved by cosine similarity above a threshold.
type Store struct {
	client     *qdrant.Client
	embed      Embedder
	collection string
	vectorSize uint64
}

// New connects to Qdrant and returns a Store. It does not create the
// collection; call EnsureCollection before ingesting.
func New(cfg Config, embed Embedder) (*Store, error) {
	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}
	port := 6334
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Store{
		client:     client,
		embed:      embed,
		collection: cfg.Collection,
		vectorSize: uint64(cfg.VectorSize),
	}, nil
}

// EnsureCollection creates the collection when it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return errx.Upstream("knowledge base", err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return errx.Upstream("knowledge base", err)
	}
	logx.Info().Str("collection", s.collection).Msg("created knowledge base collection")
	return nil
}

// Ingest embeds each question and upserts the pair as one point. Returns the
// number of pairs stored.
func (s *Store) Ingest(ctx context.Context, pairs []QnAPair) (int, error) {
	if err := s.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	points := make([]*qdrant.PointStruct, 0, len(pairs))
	for _, pair := range pairs {
		vec, err := s.embed.Embed(ctx, pair.Question)
		if err != nil {
			return 0, err
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{
				"question": pair.Question,
				"answer":   pair.Answer,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return 0, errx.Upstream("knowledge base", err)
	}
	return len(points), nil
}

// Retrieve returns Q&A pairs similar to the query, best first, restricted to
// scores at or above threshold.
func (s *Store) Retrieve(ctx context.Context, query string, limit int, threshold float32) ([]QnA, error) {
	vec, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	lim := uint64(limit)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &lim,
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, errx.Upstream("knowledge base", err)
	}

	results := make([]QnA, 0, len(points))
	for _, point := range points {
		entry := QnA{Score: point.Score}
		if point.Id != nil {
			if id := point.Id.GetUuid(); id != "" {
				entry.ID = id
			} else if num := point.Id.GetNum(); num != 0 {
				entry.ID = strconv.FormatUint(num, 10)
			}
		}
		if point.Payload != nil {
			if v, ok := point.Payload["question"]; ok {
				entry.Question = v.GetStringValue()
			}
			if v, ok := point.Payload["answer"]; ok {
				entry.Answer = v.GetStringValue()
			}
		}
		results = append(results, entry)
	}
	return results, nil
}

// Info returns collection status and point count.
func (s *Store) Info(ctx context.Context) (*CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return nil, errx.Upstream("knowledge base", err)
	}
	out := &CollectionInfo{
		Collection: s.collection,
		Status:     info.GetStatus().String(),
	}
	if c := info.GetPointsCount(); c != 0 {
		out.PointsCount = c
	}
	return out, nil
}

// DeleteAll drops and recreates the collection.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return errx.Upstream("knowledge base", err)
	}
	return s.EnsureCollection(ctx)
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}
