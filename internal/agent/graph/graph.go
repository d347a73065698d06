package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/medusa-chatbot/server/internal/agent/graph/conversations"
	"github.com/medusa-chatbot/server/internal/agent/graph/nodes"
	"github.com/medusa-chatbot/server/internal/agent/graph/observers"
	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/agent/tools"
	errx "github.com/medusa-chatbot/server/internal/core/error"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// fallbackAnswer is returned when the model produces no usable content.
const fallbackAnswer = "I processed your request."

// Config holds everything needed to compose the orchestration engine
// end-to-end. The genai client is shared with the embedding pipeline.
type Config struct {
	Client       *genai.Client
	Chat         model.ChatModelConfig
	Prompt       model.PromptConfig
	Knowledge    model.KnowledgeConfig
	Conversation model.ConversationConfig
	Store        model.ConversationStore
	Backends     tools.Backends
}

// GraphConfig holds all configuration needed to build the compiled graph.
type GraphConfig struct {
	ChatModels   *nodes.ChatModels
	Store        model.ConversationStore
	Backends     tools.Backends
	Prompt       model.PromptConfig
	Knowledge    model.KnowledgeConfig
	ToolMaxCalls int
}

// GraphBuilder handles the construction of the orchestration graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

// Engine executes chat turns against the compiled graph. Turns on the same
// conversation are serialized; distinct conversations run concurrently.
type Engine struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
	store    model.ConversationStore
	locks    *conversations.Locker
}

// BuildEngine composes the chat model, builds the graph, and returns an Engine.
func BuildEngine(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		Client: cfg.Client,
		Chat:   cfg.Chat,
	})
	if err != nil {
		return nil, err
	}

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:   cms,
		Store:        cfg.Store,
		Backends:     cfg.Backends,
		Prompt:       cfg.Prompt,
		Knowledge:    cfg.Knowledge,
		ToolMaxCalls: cfg.Conversation.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Orchestration graph built successfully")
	return &Engine{
		runnable: runnable,
		store:    cfg.Store,
		locks:    conversations.NewLocker(),
	}, nil
}

// BuildGraph constructs and returns the compiled orchestration graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Response == nil {
		return nil, fmt.Errorf("chat model is not properly initialized")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("conversation store is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools binds the tool schemas to the response model. Execution happens
// in the ToolExecutor node through the per-turn registry, so structured
// payloads stay attached to their results.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	if err := b.config.ChatModels.BindTools(ctx, tools.ToolInfos()); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to response model")
		return fmt.Errorf("failed to bind tools to response model: %w", err)
	}
	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeContextAssembler,
		nodes.NewContextAssemblerNode(b.config.Store, b.config.Backends, b.config.Knowledge),
	)

	b.graph.AddChatModelNode(nodes.NodeResponseChatModel,
		b.config.ChatModels.Response,
		compose.WithStatePreHandler(nodes.NewResponseChatModelPreHandler(b.config.Prompt, b.config.ToolMaxCalls)),
		compose.WithStatePostHandler(nodes.NewResponseChatModelPostHandler(b.config.Store, b.config.ChatModels.ModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeToolExecutor,
		nodes.NewToolExecutorNode(),
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxCalls)),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeContextAssembler},
		{nodes.NodeContextAssembler, nodes.NodeResponseChatModel},
		{nodes.NodeToolExecutor, nodes.NodeResponseChatModel},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the decision branch after the chat model.
func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			compose.END:            true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeResponseChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// ProcessQuery runs one chat turn. The caller is expected to have validated
// the input; the conversation id must be set.
func (e *Engine) ProcessQuery(ctx context.Context, in model.QueryInput) (*model.QueryOutput, error) {
	unlock := e.locks.Lock(in.ConversationID)
	defer unlock()

	out, err := e.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, turnError(err)
	}

	result := &model.QueryOutput{
		Answer:         fallbackAnswer,
		ToolsUsed:      []string{},
		ConversationID: in.ConversationID,
	}
	if out == nil {
		return result, nil
	}
	if answer := strings.TrimSpace(out.Content); answer != "" {
		result.Answer = answer
	}
	if used, ok := out.Extra[nodes.ExtraToolsUsed].([]string); ok {
		result.ToolsUsed = used
	}
	if payload, ok := out.Extra[nodes.ExtraPayload].(*model.Payload); ok && payload != nil {
		result.Data = payload
	}
	if cost, ok := out.Extra[nodes.ExtraTotalCostUSD].(float64); ok {
		result.CostUSD = cost
	}
	return result, nil
}

// turnError maps a failed graph run to its client-facing error. Typed domain
// errors (store outage, upstream failure) keep their status and message; only
// untyped failures are attributed to the model backend.
func turnError(err error) error {
	var e *errx.Error
	if errors.As(err, &e) {
		return e
	}
	return errx.Model(err)
}

// ClearConversation drops the committed state; the next turn starts fresh.
func (e *Engine) ClearConversation(ctx context.Context, conversationID string) error {
	return e.store.Expire(ctx, conversationID)
}
