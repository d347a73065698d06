package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/agent/model"
)

func (r *Registry) searchKnowledgeBaseSpec() *ToolSpec {
	return &ToolSpec{
		Info: &schema.ToolInfo{
			Name: ToolSearchKnowledgeBase,
			Desc: "Search company knowledge base for general store information like policies, shipping, FAQs. Use for general questions NOT about personal account.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "The user's question about general store information",
					Required: true,
				},
			}),
		},
		Run: func(ctx context.Context, args json.RawMessage) model.ToolResult {
			var in struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return invalidArgs(ToolSearchKnowledgeBase, err)
			}

			results, err := r.backends.Knowledge.Retrieve(ctx, in.Query, r.knowledge.RetrieveLimit, r.knowledge.ScoreThreshold)
			if err != nil {
				return model.ToolResult{
					Content: "I'm having trouble accessing the knowledge base right now. Please try again or contact support.",
					Err:     err.Error(),
				}
			}
			if len(results) == 0 {
				return model.ToolResult{
					Content: "I don't have specific information about that in my knowledge base. Let me help you in another way or you can contact our support team.",
				}
			}

			// High-confidence top hit: answer directly without the Q&A framing.
			if results[0].Score > r.knowledge.DirectAnswer {
				return model.ToolResult{Content: results[0].Answer}
			}

			var b strings.Builder
			b.WriteString("Based on our store information:\n\n")
			for _, qna := range results {
				fmt.Fprintf(&b, "**Q: %s**\n%s\n\n", qna.Question, qna.Answer)
			}
			return model.ToolResult{Content: strings.TrimSpace(b.String())}
		},
	}
}
