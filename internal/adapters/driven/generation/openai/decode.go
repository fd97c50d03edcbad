package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
)

// errUnrecognised is returned for bodies matching none of the known encodings.
var errUnrecognised = errors.New("unrecognised response encoding")

// envelope holds the fields that decide which encoding a body uses.
type envelope struct {
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	IncompleteDetails *incompleteDetail `json:"incomplete_details"`
	Output            json.RawMessage   `json:"output"`
	OutputText        string            `json:"output_text"`
	Choices           []legacyChoice    `json:"choices"`
	Error             json.RawMessage   `json:"error"`
}

type incompleteDetail struct {
	Reason string `json:"reason"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Content []outputContent `json:"content"`
}

type outputContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type legacyChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Text string `json:"text"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// DecodeResponse resolves a response body into one of the known encodings.
// Precedence: error object, raw string output, structured output, legacy choices.
func DecodeResponse(body []byte) (*driven.GenerationResponse, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if present(env.Error) {
		return &driven.GenerationResponse{
			Kind:         driven.ResponseError,
			ID:           env.ID,
			Status:       env.Status,
			ErrorMessage: errorMessage(env.Error),
		}, nil
	}

	if present(env.Output) {
		var raw string
		if err := json.Unmarshal(env.Output, &raw); err == nil {
			return &driven.GenerationResponse{Kind: driven.ResponseRawString, Text: raw}, nil
		}

		var items []outputItem
		if err := json.Unmarshal(env.Output, &items); err != nil {
			return nil, fmt.Errorf("decode output: %w", err)
		}
		resp := &driven.GenerationResponse{
			Kind:   driven.ResponseStructured,
			ID:     env.ID,
			Status: env.Status,
			Text:   structuredText(items),
		}
		if resp.Text == "" {
			resp.Text = env.OutputText
		}
		if env.IncompleteDetails != nil {
			resp.IncompleteReason = env.IncompleteDetails.Reason
		}
		return resp, nil
	}

	if len(env.Choices) > 0 {
		choice := env.Choices[0]
		text := choice.Message.Content
		if text == "" {
			text = choice.Text
		}
		return &driven.GenerationResponse{Kind: driven.ResponseLegacyChoice, Text: text}, nil
	}

	// A structured response with no output items yet, e.g. truncated before any text.
	if env.ID != "" && env.Status != "" {
		resp := &driven.GenerationResponse{
			Kind:   driven.ResponseStructured,
			ID:     env.ID,
			Status: env.Status,
			Text:   env.OutputText,
		}
		if env.IncompleteDetails != nil {
			resp.IncompleteReason = env.IncompleteDetails.Reason
		}
		return resp, nil
	}

	return nil, errUnrecognised
}

// structuredText concatenates the text parts of all message output items.
func structuredText(items []outputItem) string {
	var sb strings.Builder
	for _, item := range items {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" || c.Type == "text" {
				sb.WriteString(c.Text)
			}
		}
	}
	return sb.String()
}

// errorMessage extracts a readable message from an error value that may be
// an object or a plain string.
func errorMessage(raw json.RawMessage) string {
	var e apiError
	if err := json.Unmarshal(raw, &e); err == nil && e.Message != "" {
		return e.Message
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// present reports whether a raw field exists and is not null.
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
