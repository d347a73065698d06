package nodes

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/graph/prompts"
	"github.com/medusa-chatbot/server/internal/agent/model"
	"github.com/medusa-chatbot/server/internal/agent/tools"
	"github.com/medusa-chatbot/server/internal/commerce"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

const (
	NodeContextAssembler  = "context_assembler"
	NodeResponseChatModel = "response_chat_model"
	NodeToolExecutor      = "tool_executor"
)

// Extra keys on the final assistant message, read by the engine to build the
// turn result.
const (
	ExtraToolsUsed    = "tools_used"
	ExtraPayload      = "payload"
	ExtraTotalCostUSD = "total_cost_usd"
)

// NewContextAssemblerNode creates the ContextAssembler node. It loads the
// committed conversation state, binds a tool registry to the caller's
// credentials, and seeds the graph state for this turn.
func NewContextAssemblerNode(
	store model.ConversationStore,
	backends tools.Backends,
	knowledge model.KnowledgeConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		state, err := store.Load(ctx, input.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("load conversation state: %w", err)
		}
		if state == nil {
			// Fingerprint of the caller identity, kept for audit only.
			fingerprint := fmt.Sprintf("%x", md5.Sum([]byte(input.AuthToken)))
			state = model.NewConversationState(input.ConversationID, fingerprint)
			logx.Debug().Str("conversation_id", input.ConversationID).Msg("Starting fresh conversation")
		}

		registry := tools.NewRegistry(backends, tools.Session{
			Credentials: commerce.Credentials{
				AuthToken:      input.AuthToken,
				PublishableKey: input.PublishableKey,
			},
			CartID: input.CartID,
		}, knowledge)

		userMsg := schema.UserMessage(input.Query)

		err = compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.ConversationID = input.ConversationID
			s.Metadata = state.Metadata
			s.Dispatcher = registry
			s.History = append(s.History, state.Messages...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("seed graph state: %w", err)
		}

		return []*schema.Message{userMsg}, nil
	})
}

// NewResponseChatModelPreHandler builds the model-facing message list for one
// decision step: the incoming messages are appended to the turn history, the
// system prompt is re-rendered from current metadata, and a wrap-up notice is
// injected once the tool call budget runs out.
func NewResponseChatModelPreHandler(promptCfg model.PromptConfig, maxToolCalls int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolCalls) {
			maxToolCalls = normalizeMaxToolCalls(maxToolCalls)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please synthesize a helpful response using the information you've already gathered. "+
						"Acknowledge any limitations in your response if you couldn't complete all necessary tool calls.",
					maxToolCalls,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		systemPrompt, err := prompts.RenderSystem(ctx, promptCfg, state.Metadata.ContextPrompt())
		if err != nil {
			return nil, err
		}

		logx.Debug().Msg("AI thinking...")

		messages := make([]*schema.Message, 0, len(state.History)+1)
		messages = append(messages, schema.SystemMessage(systemPrompt))
		messages = append(messages, state.History...)
		return messages, nil
	}
}

// NewResponseChatModelPostHandler accounts usage cost, normalizes tool call
// IDs, and commits the conversation state once the turn reaches its final
// assistant message.
func NewResponseChatModelPostHandler(
	store model.ConversationStore,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		if out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			state.TotalCostUSD += totalC
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Str("node", NodeResponseChatModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", state.TotalCostUSD).
				Msg("LLM usage")
		}

		// Normalize tool calls: some providers may omit tool_call IDs.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 && !state.ToolCallLimitReached {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
			return out, nil
		}
		logx.Debug().Msg("AI response ready")

		// Commit once per turn, on the final assistant message — even an
		// empty one, or the user's message and the folded metadata would be
		// lost to the next turn. System messages (prompt preambles, wrap-up
		// notices) are never persisted.
		if out.Role == schema.Assistant && !state.Committed {
			persisted := make([]*schema.Message, 0, len(state.History))
			for _, msg := range state.History {
				if msg == nil || msg.Role == schema.System {
					continue
				}
				persisted = append(persisted, msg)
			}
			committed := &model.ConversationState{
				ConversationID: state.ConversationID,
				Messages:       persisted,
				Metadata:       state.Metadata,
			}
			if err := store.Commit(ctx, state.ConversationID, committed); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Err(err).
					Msg("Error committing conversation state")
			} else {
				state.Committed = true
				logx.Debug().
					Str("conversation_id", state.ConversationID).
					Int("message_count", len(persisted)).
					Msg("Committed conversation state")
			}

			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra[ExtraToolsUsed] = append([]string{}, state.ToolsUsed...)
			out.Extra[ExtraPayload] = state.LastPayload
			out.Extra[ExtraTotalCostUSD] = state.TotalCostUSD
		}

		return out, nil
	}
}

// NewToolExecutorNode creates the ToolExecutor node. It dispatches the
// requested tool calls through the per-turn registry, folds the structured
// payloads into conversation metadata, and returns tool messages for the next
// decision step.
func NewToolExecutorNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in *schema.Message) ([]*schema.Message, error) {
		var dispatcher model.ToolDispatcher
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			dispatcher = s.Dispatcher
			return nil
		}); err != nil {
			return nil, fmt.Errorf("access graph state: %w", err)
		}
		if dispatcher == nil {
			return nil, fmt.Errorf("tool dispatcher not initialized")
		}

		results := dispatcher.Dispatch(ctx, in.ToolCalls)

		messages := make([]*schema.Message, 0, len(results))
		for _, res := range results {
			messages = append(messages, schema.ToolMessage(res.Content, res.CallID, schema.WithToolName(res.ToolName)))
		}

		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.Metadata.Fold(results)
			for _, res := range results {
				if res.ToolName != "" {
					markTurnToolUsed(s, res.ToolName)
				}
				if res.Payload != nil {
					s.LastPayload = res.Payload
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("fold tool results: %w", err)
		}

		return messages, nil
	})
}

func markTurnToolUsed(s *model.AppState, name string) {
	for _, existing := range s.ToolsUsed {
		if existing == name {
			return
		}
	}
	s.ToolsUsed = append(s.ToolsUsed, name)
}

// NewToolExecutorPreHandler counts tool executor entries against the budget.
func NewToolExecutorPreHandler(maxToolCalls int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementToolCallAndCheck(state, maxToolCalls)

		logx.Debug().
			Int("tool_call_count", state.ToolCallCount).
			Str("conversation_id", state.ConversationID).
			Msg("Tool execution attempt")

		if exceeded {
			logx.Warn().
				Int("tool_call_count", state.ToolCallCount).
				Int("max_tool_calls", normalizeMaxToolCalls(maxToolCalls)).
				Str("conversation_id", state.ConversationID).
				Msg("Tool call limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}

// NewToolExecutorCondition routes to the executor while the model keeps
// requesting tools and the budget allows it.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.ToolCallLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to end")
			return compose.END, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		logx.Debug().Msg("No tool calls - continuing to end")
		return compose.END, nil
	}
}
