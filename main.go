package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/medusa-chatbot/server/internal/agent/graph"
	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/agent/repo"
	"github.com/medusa-chatbot/server/internal/agent/tools"
	"github.com/medusa-chatbot/server/internal/commerce"
	"github.com/medusa-chatbot/server/internal/core"
	"github.com/medusa-chatbot/server/internal/rag"
	"github.com/medusa-chatbot/server/internal/search"
	"github.com/medusa-chatbot/server/internal/server"
	logx "github.com/medusa-chatbot/server/pkg/logger"
	pkgredis "github.com/medusa-chatbot/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Medusa commerce.Config
	Meili  search.Config
	Qdrant rag.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Chat         model.ChatModelConfig
	Prompt       model.PromptConfig
	Knowledge    model.KnowledgeConfig
	Conversation model.ConversationConfig

	Server struct {
		Addr string `envconfig:"SERVER_ADDR" default:":5001"`
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", cfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	embedder := rag.NewGeminiEmbedder(client, cfg.Qdrant.EmbedModel, cfg.Qdrant.VectorSize)
	knowledge, err := rag.New(cfg.Qdrant, embedder)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to connect to Qdrant")
	}
	defer knowledge.Close()
	if err := knowledge.EnsureCollection(ctx); err != nil {
		logx.Warn().Err(err).Msg("Knowledge base collection check failed; continuing without it")
	}

	store := commerce.New(cfg.Medusa)
	searcher := search.New(cfg.Meili)

	engine, err := graph.BuildEngine(ctx, graph.Config{
		Client:       client,
		Chat:         cfg.Chat,
		Prompt:       cfg.Prompt,
		Knowledge:    cfg.Knowledge,
		Conversation: cfg.Conversation,
		Store:        repo.NewRedisConversationStore(rdb, ttl),
		Backends: tools.Backends{
			Commerce:  store,
			Search:    searcher,
			Knowledge: knowledge,
		},
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build orchestration engine")
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(engine, store, knowledge).Router(),
	}

	go func() {
		logx.Info().Str("addr", cfg.Server.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logx.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
