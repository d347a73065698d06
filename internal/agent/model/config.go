package model

// ================ Config ================
type ConversationConfig struct {
	TTL   string `envconfig:"CONVERSATION_TTL" default:"30m"`
	Tools struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"10"`
	}
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.4"`
}

type PromptConfig struct {
	StoreName string `envconfig:"PROMPT_STORE_NAME" default:"a Medusa e-commerce store"`
}

type KnowledgeConfig struct {
	RetrieveLimit  int     `envconfig:"KNOWLEDGE_RETRIEVE_LIMIT" default:"3"`
	ScoreThreshold float32 `envconfig:"KNOWLEDGE_SCORE_THRESHOLD" default:"0.7"`
	DirectAnswer   float32 `envconfig:"KNOWLEDGE_DIRECT_ANSWER_SCORE" default:"0.85"`
}
