// Package openai provides a generation service adapter for the OpenAI Responses API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.GenerationService = (*Service)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4.1"
	DefaultTimeout = 120 * time.Second
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

// Config holds configuration for the Responses service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is sent with every request. Stored prompts may pin their own model.
	Model string

	// Timeout bounds each HTTP call (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond limits outgoing calls. Zero disables limiting.
	RequestsPerSecond float64

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Service issues single Responses API calls.
type Service struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *rate.Limiter
}

// NewService creates a new Responses service.
func NewService(cfg Config) (*Service, error) {
	if domain.IsPlaceholderKey(cfg.APIKey) {
		return nil, fmt.Errorf("%w: openai API key is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	s := &Service{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s, nil
}

// request is the /responses request body.
type request struct {
	Model              string         `json:"model,omitempty"`
	Prompt             *promptRef     `json:"prompt,omitempty"`
	Instructions       string         `json:"instructions,omitempty"`
	Input              []inputMessage `json:"input"`
	MaxOutputTokens    int            `json:"max_output_tokens,omitempty"`
	Store              bool           `json:"store"`
	PreviousResponseID string         `json:"previous_response_id,omitempty"`
}

type promptRef struct {
	ID      string `json:"id"`
	Version string `json:"version,omitempty"`
}

type inputMessage struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// encodeRequest converts a port request to the wire format.
func (s *Service) encodeRequest(req driven.GenerationRequest) request {
	body := request{
		Model:              s.model,
		Instructions:       req.Instructions,
		MaxOutputTokens:    req.MaxOutputTokens,
		Store:              req.Store,
		PreviousResponseID: req.PreviousResponseID,
		Input:              make([]inputMessage, len(req.Input)),
	}
	if req.Prompt.ID != "" {
		body.Prompt = &promptRef{ID: req.Prompt.ID, Version: req.Prompt.Version}
	}
	for i, msg := range req.Input {
		role := msg.Role
		if role == "" {
			role = "user"
		}
		body.Input[i] = inputMessage{
			Role:    role,
			Content: []inputContent{{Type: "input_text", Text: msg.Text}},
		}
	}
	return body
}

// Respond issues one POST /responses call.
func (s *Service) Respond(ctx context.Context, req driven.GenerationRequest) (*driven.GenerationResponse, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrTransport, err)
		}
	}

	jsonBody, err := json.Marshal(s.encodeRequest(req))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/responses", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: openai returned status %d: %s",
			domain.ErrTransport, resp.StatusCode, truncate(string(body), maxErrorBody))
	}

	decoded, err := DecodeResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return decoded, nil
}

// Name returns the provider and model.
func (s *Service) Name() string {
	return "openai/" + s.model
}

// Close releases resources.
func (s *Service) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Ping validates the key against the /models endpoint without running inference.
func (s *Service) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: openai ping: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: openai returned status %d: %s", domain.ErrConfiguration, resp.StatusCode, string(body))
	}
	return nil
}
