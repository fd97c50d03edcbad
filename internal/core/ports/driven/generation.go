package driven

import (
	"context"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
)

// GenerationService is the external, token-limited text-generation service.
// One call is one physical round trip; continuation across calls is driven
// by the caller through PreviousResponseID.
//
// Implementations may include:
//   - OpenAI Responses API (stored prompts)
//   - Google Gemini (genai SDK)
type GenerationService interface {
	// Respond issues a single request and returns the decoded response.
	// Transport failures and non-success HTTP statuses return an error
	// wrapping domain.ErrTransport.
	Respond(ctx context.Context, req GenerationRequest) (*GenerationResponse, error)

	// Name identifies the provider and model for logging.
	Name() string

	// Close releases resources.
	Close() error
}

// Message is one user input message. It is sent on the wire as
// {role: "user", content: [{type: "input_text", text}]}.
type Message struct {
	// Role is always "user" for this service.
	Role string

	// Text is the message content.
	Text string
}

// UserMessage builds a user message.
func UserMessage(text string) Message {
	return Message{Role: "user", Text: text}
}

// GenerationRequest is one physical call to the service.
type GenerationRequest struct {
	// Prompt identifies the stored prompt and its version.
	Prompt domain.PromptRef

	// Instructions are sent when Prompt has no ID, for providers or setups
	// without stored prompts.
	Instructions string

	// Input holds the user messages.
	Input []Message

	// MaxOutputTokens caps the output of this call.
	MaxOutputTokens int

	// Store asks the service to retain the response for continuation.
	Store bool

	// PreviousResponseID links a continuation call to the truncated response.
	PreviousResponseID string
}

// ResponseKind tags which encoding the service returned.
// The union is resolved once at the network boundary.
type ResponseKind int

const (
	// ResponseStructured is {id, status, incomplete_details, output: [{type: message, content: [...]}]}.
	ResponseStructured ResponseKind = iota

	// ResponseRawString is {output: "..."}.
	ResponseRawString

	// ResponseLegacyChoice is {choices: [{message: {content: "..."}}]}.
	ResponseLegacyChoice

	// ResponseError is {error: {...}}.
	ResponseError
)

// String returns the kind name.
func (k ResponseKind) String() string {
	switch k {
	case ResponseStructured:
		return "structured"
	case ResponseRawString:
		return "raw_string"
	case ResponseLegacyChoice:
		return "legacy_choice"
	case ResponseError:
		return "error"
	default:
		return "unknown"
	}
}

// Response statuses reported by the service.
const (
	StatusComplete   = "complete"
	StatusCompleted  = "completed"
	StatusIncomplete = "incomplete"
)

// IncompleteReasonMaxTokens is the only incomplete reason that allows continuation.
const IncompleteReasonMaxTokens = "max_output_tokens"

// GenerationResponse is the decoded service response.
type GenerationResponse struct {
	// Kind records which encoding was found.
	Kind ResponseKind

	// ID is the response id used for continuation. Only set for ResponseStructured.
	ID string

	// Status is the reported status. Empty for non-structured kinds.
	Status string

	// IncompleteReason is set when Status is incomplete.
	IncompleteReason string

	// Text is all output text found in the response, concatenated.
	Text string

	// ErrorMessage is the error content for ResponseError.
	ErrorMessage string
}
