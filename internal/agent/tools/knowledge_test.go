package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/medusa-chatbot/server/internal/rag"
)

func TestKnowledgeBaseUnavailable(t *testing.T) {
	r := testRegistry(Backends{Knowledge: &fakeKnowledge{err: errors.New("qdrant down")}})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolSearchKnowledgeBase, `{"query":"shipping"}`),
	})

	if !strings.Contains(results[0].Content, "trouble accessing the knowledge base") {
		t.Errorf("Content = %q", results[0].Content)
	}
	if results[0].Err == "" {
		t.Error("backend failure should carry its error")
	}
}

func TestKnowledgeBaseNoMatches(t *testing.T) {
	r := testRegistry(Backends{Knowledge: &fakeKnowledge{}})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolSearchKnowledgeBase, `{"query":"shipping"}`),
	})

	if !strings.Contains(results[0].Content, "don't have specific information") {
		t.Errorf("Content = %q", results[0].Content)
	}
	if results[0].Err != "" {
		t.Errorf("no matches is not an error, got %q", results[0].Err)
	}
}

func TestKnowledgeBaseDirectAnswer(t *testing.T) {
	// top hit above the direct-answer threshold (0.85 in testRegistry)
	r := testRegistry(Backends{Knowledge: &fakeKnowledge{results: []rag.QnA{
		{Question: "What is your return policy?", Answer: "30 days, free returns.", Score: 0.92},
		{Question: "Do you ship abroad?", Answer: "Yes.", Score: 0.75},
	}}})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolSearchKnowledgeBase, `{"query":"returns"}`),
	})

	if results[0].Content != "30 days, free returns." {
		t.Errorf("Content = %q, want the bare top answer", results[0].Content)
	}
}

func TestKnowledgeBaseQnAFraming(t *testing.T) {
	r := testRegistry(Backends{Knowledge: &fakeKnowledge{results: []rag.QnA{
		{Question: "What is your return policy?", Answer: "30 days.", Score: 0.8},
		{Question: "Do you ship abroad?", Answer: "Yes.", Score: 0.72},
	}}})

	results := r.Dispatch(context.Background(), []schema.ToolCall{
		call(ToolSearchKnowledgeBase, `{"query":"policies"}`),
	})
	content := results[0].Content

	if !strings.HasPrefix(content, "Based on our store information:") {
		t.Errorf("framing missing: %q", content)
	}
	for _, want := range []string{
		"**Q: What is your return policy?**\n30 days.",
		"**Q: Do you ship abroad?**\nYes.",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q:\n%s", want, content)
		}
	}
}
