package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/domain"
)

// ModelSpec routes a caller-facing model ID to a provider and the model
// name that provider expects. Prices are USD per 1M tokens.
type ModelSpec struct {
	ID              string
	Name            string
	Provider        string
	WireModel       string
	PromptPrice     float64
	CompletionPrice float64
}

const ProviderOpenRouter = "openrouter"

// SupportedModels is the fixed set the assistant UI offers. Caller-facing
// IDs follow the OpenRouter naming, which is also what the default
// provider accepts, so fallback never needs a separate translation.
var SupportedModels = []ModelSpec{
	{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", Provider: ProviderOpenRouter, WireModel: "openai/gpt-4o-mini", PromptPrice: 0.15, CompletionPrice: 0.6},
	{ID: "openai/gpt-4o", Name: "GPT-4o", Provider: ProviderOpenRouter, WireModel: "openai/gpt-4o", PromptPrice: 2.5, CompletionPrice: 10},
	{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Provider: ProviderOpenRouter, WireModel: "anthropic/claude-3.5-sonnet", PromptPrice: 3, CompletionPrice: 15},
	{ID: "anthropic/claude-3.5-haiku", Name: "Claude 3.5 Haiku", Provider: ProviderOpenRouter, WireModel: "anthropic/claude-3.5-haiku", PromptPrice: 0.8, CompletionPrice: 4},
	{ID: "google/gemini-2.0-flash-001", Name: "Gemini 2.0 Flash", Provider: ProviderOpenRouter, WireModel: "google/gemini-2.0-flash-001", PromptPrice: 0.1, CompletionPrice: 0.4},
	{ID: "mistralai/mistral-small", Name: "Mistral Small", Provider: ProviderOpenRouter, WireModel: "mistralai/mistral-small", PromptPrice: 0.2, CompletionPrice: 0.6},
	{ID: "meta-llama/llama-3.3-70b-instruct", Name: "Llama 3.3 70B", Provider: "groq", WireModel: "llama-3.3-70b-versatile", PromptPrice: 0.59, CompletionPrice: 0.79},
	{ID: "deepseek/deepseek-chat", Name: "DeepSeek V3", Provider: "deepinfra", WireModel: "deepseek-ai/DeepSeek-V3", PromptPrice: 0.85, CompletionPrice: 0.9},
}

// Reply is the normalized gateway result.
type Reply struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	CostUSD          decimal.Decimal
}

// Gateway fans chat requests out to interchangeable providers and
// recovers locally from single-provider failures.
type Gateway struct {
	providers    map[string]Provider
	defaultName  string
	defaultModel string
	specs        map[string]ModelSpec
}

func NewGateway(defaultModel string, providers ...Provider) *Gateway {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	specs := make(map[string]ModelSpec, len(SupportedModels))
	for _, s := range SupportedModels {
		specs[s.ID] = s
	}
	if _, ok := specs[defaultModel]; !ok {
		defaultModel = SupportedModels[0].ID
	}
	return &Gateway{
		providers:    byName,
		defaultName:  ProviderOpenRouter,
		defaultModel: defaultModel,
		specs:        specs,
	}
}

// Resolve maps a caller-facing model ID to its spec. Unknown IDs fail
// closed to the default model rather than erroring the turn.
func (g *Gateway) Resolve(modelID string) ModelSpec {
	if spec, ok := g.specs[modelID]; ok {
		return spec
	}
	return g.specs[g.defaultModel]
}

// DefaultModel returns the ID used when a user has no preference yet.
func (g *Gateway) DefaultModel() string { return g.defaultModel }

// Send issues one chat completion. A failure on a non-default provider
// is retried once against the default provider; only a default-provider
// failure surfaces, and then only as ErrAssistantUnavailable.
func (g *Gateway) Send(ctx context.Context, prompt, systemContext, modelID string) (*Reply, error) {
	spec := g.Resolve(modelID)

	messages := []ChatMessage{
		{Role: "system", Content: systemContext},
		{Role: "user", Content: prompt},
	}

	def := g.providers[g.defaultName]
	provider, ok := g.providers[spec.Provider]
	if !ok {
		provider = def
		spec = g.fallbackSpec(spec)
	}
	if provider == nil {
		slog.Error("no provider configured", "model", spec.ID)
		return nil, fmt.Errorf("%w: %s", domain.ErrAssistantUnavailable, spec.ID)
	}

	resp, err := provider.Chat(ctx, spec.WireModel, messages)
	if err != nil && provider.Name() != g.defaultName && def != nil {
		slog.Error("provider failed, falling back",
			"provider", provider.Name(), "model", spec.ID, "error", err)
		spec = g.fallbackSpec(spec)
		provider = def
		resp, err = provider.Chat(ctx, spec.WireModel, messages)
	}
	if err != nil {
		slog.Error("default provider failed", "model", spec.ID, "error", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrAssistantUnavailable, spec.ID)
	}

	return &Reply{
		Text:             resp.Choices[0].Message.Content,
		Model:            spec.ID,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CostUSD:          replyCost(resp, spec),
	}, nil
}

// fallbackSpec rewires a spec to run on the default provider. The
// caller-facing ID doubles as the default provider's wire model.
func (g *Gateway) fallbackSpec(spec ModelSpec) ModelSpec {
	spec.Provider = g.defaultName
	spec.WireModel = spec.ID
	return spec
}

func replyCost(resp *ChatResponse, spec ModelSpec) decimal.Decimal {
	// Prefer the provider-reported cost when present.
	if resp.Usage.TotalCost > 0 {
		return decimal.NewFromFloat(resp.Usage.TotalCost)
	}
	return CalculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
		spec.PromptPrice, spec.CompletionPrice)
}

// CalculateCost converts token usage to USD given per-1M-token prices.
func CalculateCost(promptTokens, completionTokens int, promptPrice, completionPrice float64) decimal.Decimal {
	promptCost := decimal.NewFromFloat(float64(promptTokens) * promptPrice / 1_000_000)
	completionCost := decimal.NewFromFloat(float64(completionTokens) * completionPrice / 1_000_000)
	return promptCost.Add(completionCost)
}
