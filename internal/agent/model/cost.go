package model

import (
	"github.com/cloudwego/eino/schema"
)

// Pricing is USD per 1M text tokens.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// Standard-tier Gemini text pricing. Audio/image tokens are billed
// differently and are not accounted for here.
var modelPricing = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
}

// ResolvePricing returns the pricing for a model, or zero pricing when the
// model is unknown so unknown models log a zero cost instead of failing.
func ResolvePricing(model string) Pricing {
	return modelPricing[model]
}

// ComputeCost converts token usage into USD using per-1M pricing.
func ComputeCost(usage *schema.TokenUsage, p Pricing) (inputCost, outputCost, total float64) {
	if usage == nil {
		return 0, 0, 0
	}
	inputCost = p.InputPerM * float64(usage.PromptTokens) / 1_000_000.0
	outputCost = p.OutputPerM * float64(usage.CompletionTokens) / 1_000_000.0
	total = inputCost + outputCost
	return
}
