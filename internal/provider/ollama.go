package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

const (
	ollamaDefaultBase = "http://localhost:11434"
)

// modelPreference is the auto-detection order when the configured model is
// "auto" or empty: the first preference found in /api/tags wins.
var modelPreference = []string{"gemma:2b", "gemma", "mistral", "llama2", "neural-chat"}

// Ollama implements domain.Provider against a local or remote Ollama server.
type Ollama struct {
	apiBase string
	client  *http.Client
	logger  *slog.Logger

	mu       sync.Mutex
	model    string
	detected bool
}

type OllamaConfig struct {
	APIBase string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.APIBase == "" {
		cfg.APIBase = ollamaDefaultBase
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Ollama{
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		model:   cfg.Model,
		client:  newHTTPClient(cfg.Timeout),
		logger:  cfg.Logger,
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Model() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.model
}

func (o *Ollama) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", o.apiBase+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// detectModel resolves the "auto" model by listing what the server has and
// picking the first preferred match, falling back to the first model listed.
func (o *Ollama) detectModel(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.detected {
		return
	}
	o.detected = true
	if o.model != "" && o.model != "auto" {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, "GET", o.apiBase+"/api/tags", nil)
	if err != nil {
		return
	}
	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Warn("cannot auto-detect ollama model", "err", err)
		return
	}
	defer resp.Body.Close()

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil || len(tags.Models) == 0 {
		o.logger.Warn("no ollama models available for auto-detection")
		return
	}

	for _, preferred := range modelPreference {
		for _, m := range tags.Models {
			if strings.Contains(m.Name, preferred) {
				o.model = m.Name
				o.logger.Info("auto-detected ollama model", "model", o.model)
				return
			}
		}
	}
	o.model = tags.Models[0].Name
	o.logger.Info("using first available ollama model", "model", o.model)
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []ollamaMsg    `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMsg `json:"message"`
}

// Generate performs a single non-streaming chat completion. No retries: the
// pipeline makes one attempt per request and falls back on failure.
func (o *Ollama) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	o.detectModel(ctx)

	options := map[string]any{
		"temperature": req.Temperature,
		"top_p":       req.TopP,
	}
	if req.MaxContext > 0 {
		options["num_ctx"] = req.MaxContext
	}

	body := ollamaChatRequest{
		Model:    o.Model(),
		Messages: []ollamaMsg{{Role: "user", Content: req.Prompt}},
		Stream:   false,
		Options:  options,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.apiBase+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return strings.TrimSpace(chatResp.Message.Content), nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embeddings returns an embedding vector via /api/embeddings.
func (o *Ollama) Embeddings(ctx context.Context, text string) ([]float64, error) {
	o.detectModel(ctx)

	jsonBody, err := json.Marshal(ollamaEmbedRequest{Model: o.Model(), Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.apiBase+"/api/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(respBody))
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return embedResp.Embedding, nil
}
