package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/BoruchYonasan/knowledge-hub-ai-nexus-sub000/internal/config"
)

// ModelInfo is what the model picker in the UI renders.
type ModelInfo struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	PromptPrice     float64 `json:"promptPrice"`
	CompletionPrice float64 `json:"completionPrice"`
	ContextLength   int     `json:"contextLength"`
}

type ModelsCache struct {
	mu       sync.RWMutex
	models   []ModelInfo
	cachedAt time.Time
	ttl      time.Duration
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl}
}

func (c *ModelsCache) Get() []ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || time.Since(c.cachedAt) > c.ttl {
		return nil
	}
	return c.models
}

func (c *ModelsCache) Set(models []ModelInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = models
	c.cachedAt = time.Now()
}

// Catalog serves the supported model list, enriched with live metadata
// from the default provider's /models listing when reachable.
type Catalog struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *ModelsCache
}

func NewCatalog(apiKey, baseURL string) *Catalog {
	return &Catalog{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		cache:      NewModelsCache(config.ModelCacheDuration),
	}
}

func (c *Catalog) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if cached := c.cache.Get(); cached != nil {
		return cached, nil
	}

	live, err := c.fetchLive(ctx)
	if err != nil {
		// The supported set is known statically; a listing failure only
		// loses descriptions and context lengths.
		slog.Warn("fetch live model metadata", "error", err)
		live = nil
	}

	models := make([]ModelInfo, 0, len(SupportedModels))
	for _, spec := range SupportedModels {
		info := ModelInfo{
			ID:              spec.ID,
			Name:            spec.Name,
			PromptPrice:     spec.PromptPrice,
			CompletionPrice: spec.CompletionPrice,
		}
		if meta, ok := live[spec.ID]; ok {
			info.Description = meta.Description
			info.ContextLength = meta.ContextLength
		}
		models = append(models, info)
	}

	c.cache.Set(models)
	return models, nil
}

type liveModel struct {
	Description   string
	ContextLength int
}

func (c *Catalog) fetchLive(ctx context.Context) (map[string]liveModel, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result struct {
		Data []struct {
			ID            string `json:"id"`
			Description   string `json:"description"`
			ContextLength int    `json:"context_length"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}

	live := make(map[string]liveModel, len(result.Data))
	for _, m := range result.Data {
		live[m.ID] = liveModel{Description: m.Description, ContextLength: m.ContextLength}
	}
	return live, nil
}
