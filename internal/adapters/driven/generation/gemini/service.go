// Package gemini provides a generation service adapter for Google Gemini.
//
// Gemini has no stored responses, so continuation is emulated: each response
// is given a uuid and the conversation that produced it is kept in memory.
// A request carrying that id as PreviousResponseID resumes the conversation.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.GenerationService = (*Service)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-pro"

// maxConversations bounds how many resumable conversations are kept.
const maxConversations = 64

// contentGenerator is the subset of *genai.Models used by the service.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds configuration for the Gemini service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the Gemini model (default: gemini-2.5-pro).
	Model string

	// RequestsPerSecond limits outgoing calls. Zero disables limiting.
	RequestsPerSecond float64
}

// conversation is the history behind one response id.
type conversation struct {
	instructions string
	contents     []*genai.Content
}

// Service issues single GenerateContent calls.
type Service struct {
	models  contentGenerator
	model   string
	limiter *rate.Limiter

	mu      sync.Mutex
	history map[string]conversation
	order   []string
}

// NewService creates a Gemini service backed by the genai client.
func NewService(ctx context.Context, cfg Config) (*Service, error) {
	if domain.IsPlaceholderKey(cfg.APIKey) {
		return nil, fmt.Errorf("%w: gemini API key is required", domain.ErrConfiguration)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %w", domain.ErrConfiguration, err)
	}

	return newService(client.Models, cfg), nil
}

// newService wires a service around any content generator.
func newService(models contentGenerator, cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	s := &Service{
		models:  models,
		model:   cfg.Model,
		history: make(map[string]conversation),
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s
}

// Respond issues one GenerateContent call.
// Stored prompt references are ignored; Gemini only sees Instructions.
func (s *Service) Respond(ctx context.Context, req driven.GenerationRequest) (*driven.GenerationResponse, error) {
	conv := conversation{instructions: req.Instructions}
	if req.PreviousResponseID != "" {
		prev, ok := s.lookup(req.PreviousResponseID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown previous response %s", domain.ErrTransport, req.PreviousResponseID)
		}
		conv.instructions = prev.instructions
		conv.contents = append(conv.contents, prev.contents...)
	}
	for _, msg := range req.Input {
		conv.contents = append(conv.contents, genai.NewContentFromText(msg.Text, genai.RoleUser))
	}

	config := &genai.GenerateContentConfig{}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxOutputTokens) //nolint:gosec // bounded by config
	}
	if conv.instructions != "" {
		config.SystemInstruction = genai.NewContentFromText(conv.instructions, genai.RoleUser)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrTransport, err)
		}
	}

	result, err := s.models.GenerateContent(ctx, s.model, conv.contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %w", domain.ErrTransport, err)
	}

	resp := decodeResult(result)
	if req.Store && resp.Kind == driven.ResponseStructured {
		conv.contents = append(conv.contents, genai.NewContentFromText(resp.Text, genai.RoleModel))
		resp.ID = uuid.NewString()
		s.remember(resp.ID, conv)
	}
	return resp, nil
}

// decodeResult maps a genai response onto the structured or error encoding.
func decodeResult(result *genai.GenerateContentResponse) *driven.GenerationResponse {
	if result == nil || len(result.Candidates) == 0 {
		msg := "no candidates returned"
		if result != nil && result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
			msg = "prompt blocked: " + string(result.PromptFeedback.BlockReason)
		}
		return &driven.GenerationResponse{Kind: driven.ResponseError, ErrorMessage: msg}
	}

	candidate := result.Candidates[0]
	resp := &driven.GenerationResponse{
		Kind:   driven.ResponseStructured,
		Status: driven.StatusCompleted,
		Text:   candidateText(candidate),
	}

	switch candidate.FinishReason {
	case genai.FinishReasonStop, genai.FinishReasonUnspecified, "":
	case genai.FinishReasonMaxTokens:
		resp.Status = driven.StatusIncomplete
		resp.IncompleteReason = driven.IncompleteReasonMaxTokens
	default:
		resp.Status = driven.StatusIncomplete
		resp.IncompleteReason = strings.ToLower(string(candidate.FinishReason))
	}
	return resp
}

// candidateText concatenates the non-thought text parts of a candidate.
func candidateText(candidate *genai.Candidate) string {
	if candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func (s *Service) lookup(id string) (conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.history[id]
	return conv, ok
}

// remember stores a conversation, evicting the oldest beyond maxConversations.
func (s *Service) remember(id string, conv conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[id] = conv
	s.order = append(s.order, id)
	for len(s.order) > maxConversations {
		delete(s.history, s.order[0])
		s.order = s.order[1:]
	}
}

// Name returns the provider and model.
func (s *Service) Name() string {
	return "gemini/" + s.model
}

// Close drops the kept conversations.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make(map[string]conversation)
	s.order = nil
	return nil
}
