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
	"time"

	"github.com/sshroot23cs/SupportSenseAI/internal/domain"
)

const systemPrompt = "You are a helpful customer support assistant."

// OpenAI implements domain.Provider for OpenAI-compatible chat APIs,
// including Azure OpenAI deployments (set APIVersion for azure mode).
type OpenAI struct {
	apiKey     string
	apiBase    string
	apiVersion string
	model      string
	embedModel string
	client     *http.Client
	logger     *slog.Logger
}

type OpenAIConfig struct {
	APIKey     string
	APIBase    string
	APIVersion string // non-empty switches to azure auth and URL layout
	Model      string
	Timeout    time.Duration
	Logger     *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OpenAI{
		apiKey:     cfg.APIKey,
		apiBase:    strings.TrimRight(cfg.APIBase, "/"),
		apiVersion: cfg.APIVersion,
		model:      cfg.Model,
		embedModel: "text-embedding-3-small",
		client:     newHTTPClient(cfg.Timeout),
		logger:     cfg.Logger,
	}
}

func (o *OpenAI) Name() string {
	if o.azure() {
		return "azure-openai"
	}
	return "openai"
}

func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) azure() bool { return o.apiVersion != "" }

// url builds the request URL for an API path, appending api-version in
// azure mode.
func (o *OpenAI) url(path string) string {
	if o.azure() {
		return o.apiBase + path + "?api-version=" + o.apiVersion
	}
	return o.apiBase + path
}

func (o *OpenAI) authorize(req *http.Request) {
	if o.azure() {
		req.Header.Set("api-key", o.apiKey)
		return
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
}

func (o *OpenAI) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", o.url("/models"), nil)
	if err != nil {
		return err
	}
	o.authorize(req)
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("openai: invalid API key")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai returned %d", resp.StatusCode)
	}
	return nil
}

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	TopP        float64      `json:"top_p,omitempty"`
	Stream      bool         `json:"stream"`
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

// Generate performs a single non-streaming chat completion with a fixed
// support-assistant system message.
func (o *OpenAI) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	body := oaiRequest{
		Model: o.model,
		Messages: []oaiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.url("/chat/completions"), bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	o.authorize(httpReq)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai returned %d: %s", resp.StatusCode, string(respBody))
	}

	var oaiResp oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(oaiResp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return strings.TrimSpace(oaiResp.Choices[0].Message.Content), nil
}

type oaiEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type oaiEmbedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (o *OpenAI) Embeddings(ctx context.Context, text string) ([]float64, error) {
	jsonBody, err := json.Marshal(oaiEmbedRequest{Model: o.embedModel, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.url("/embeddings"), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	o.authorize(httpReq)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai returned %d: %s", resp.StatusCode, string(respBody))
	}

	var embedResp oaiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(embedResp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embeddings")
	}
	return embedResp.Data[0].Embedding, nil
}
