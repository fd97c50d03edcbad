package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexmerge/internal/core/domain"
	"github.com/custodia-labs/lexmerge/internal/core/ports/driven"
	"github.com/custodia-labs/lexmerge/internal/logger"
)

// SessionStatus is the state of one continuation session.
type SessionStatus int

// Session states.
const (
	SessionIdle SessionStatus = iota
	SessionRequesting
	SessionIncomplete
	SessionComplete
	SessionError
)

// String returns the status name.
func (s SessionStatus) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionRequesting:
		return "requesting"
	case SessionIncomplete:
		return "incomplete"
	case SessionComplete:
		return "complete"
	case SessionError:
		return "error"
	default:
		return "unknown"
	}
}

// ContinuationSession is the transient state of one Driver invocation.
// Transitions: Idle -> Requesting -> {Complete, Incomplete, Error};
// Incomplete -> Requesting until the retry limit is reached.
type ContinuationSession struct {
	accumulated strings.Builder

	// PreviousResponseID is the id of the last structured response.
	PreviousResponseID string

	// Attempt counts truncated responses so far.
	Attempt int

	// Status is the current state.
	Status SessionStatus

	// MaxRetries bounds the number of truncated responses tolerated.
	MaxRetries int

	// Err is set when Status is SessionError.
	Err error
}

// NewContinuationSession creates an idle session.
// maxRetries <= 0 selects domain.DefaultMaxRetries.
func NewContinuationSession(maxRetries int) *ContinuationSession {
	if maxRetries <= 0 {
		maxRetries = domain.DefaultMaxRetries
	}
	return &ContinuationSession{
		Status:     SessionIdle,
		MaxRetries: maxRetries,
	}
}

// AccumulatedText returns all text received so far.
func (s *ContinuationSession) AccumulatedText() string {
	return s.accumulated.String()
}

// Done reports whether the session reached a terminal state.
func (s *ContinuationSession) Done() bool {
	return s.Status == SessionComplete || s.Status == SessionError
}

// Request builds the next physical request and moves the session to Requesting.
// The first request carries the initial input; later ones carry the continue
// instruction and the previous response id.
func (s *ContinuationSession) Request(base driven.GenerationRequest, initial []driven.Message, continueText string) driven.GenerationRequest {
	req := base
	req.Store = true
	if s.Status == SessionIncomplete {
		req.Input = []driven.Message{driven.UserMessage(continueText)}
		req.PreviousResponseID = s.PreviousResponseID
	} else {
		req.Input = initial
		req.PreviousResponseID = ""
	}
	s.Status = SessionRequesting
	return req
}

// Fail moves the session to Error.
func (s *ContinuationSession) Fail(err error) SessionStatus {
	s.Status = SessionError
	s.Err = err
	return s.Status
}

// Advance applies a response to the session and returns the new status.
func (s *ContinuationSession) Advance(resp *driven.GenerationResponse) SessionStatus {
	if resp == nil {
		return s.Fail(fmt.Errorf("%w: empty response", domain.ErrUnexpectedStatus))
	}

	s.accumulated.WriteString(resp.Text)

	switch resp.Kind {
	case driven.ResponseError:
		// Error content is kept for inspection; the caller's parse step decides.
		s.accumulated.WriteString(resp.ErrorMessage)
		s.Status = SessionComplete
		return s.Status

	case driven.ResponseRawString, driven.ResponseLegacyChoice:
		s.Status = SessionComplete
		return s.Status
	}

	if resp.ID != "" {
		s.PreviousResponseID = resp.ID
	}

	switch resp.Status {
	case driven.StatusComplete, driven.StatusCompleted, "":
		s.Status = SessionComplete
		return s.Status

	case driven.StatusIncomplete:
		if resp.IncompleteReason != driven.IncompleteReasonMaxTokens {
			return s.Fail(fmt.Errorf("%w: incomplete (%s)", domain.ErrUnexpectedStatus, resp.IncompleteReason))
		}
		if s.PreviousResponseID == "" {
			return s.Fail(fmt.Errorf("%w: truncated response has no id", domain.ErrUnexpectedStatus))
		}
		s.Attempt++
		if s.Attempt >= s.MaxRetries {
			return s.Fail(fmt.Errorf("%w: %d truncated responses", domain.ErrRetriesExhausted, s.Attempt))
		}
		s.Status = SessionIncomplete
		return s.Status

	default:
		return s.Fail(fmt.Errorf("%w: %s", domain.ErrUnexpectedStatus, resp.Status))
	}
}

// ContinuationDriver drives one logical generation task across as many
// physical calls as the service needs to finish its output.
type ContinuationDriver struct {
	service         driven.GenerationService
	maxOutputTokens int
	continueText    string
}

// NewContinuationDriver creates a driver over a generation service.
func NewContinuationDriver(service driven.GenerationService, maxOutputTokens int) *ContinuationDriver {
	if maxOutputTokens <= 0 {
		maxOutputTokens = domain.DefaultMaxOutputTokens
	}
	return &ContinuationDriver{
		service:         service,
		maxOutputTokens: maxOutputTokens,
		continueText:    driven.DefaultPrompts[driven.PromptContinue],
	}
}

// SetContinueText overrides the continuation instruction.
func (d *ContinuationDriver) SetContinueText(text string) {
	if strings.TrimSpace(text) != "" {
		d.continueText = text
	}
}

// Run issues the request and follows truncated responses until the service
// reports completion. It returns the accumulated text, which may be empty.
// Errors wrap domain.ErrTransport, domain.ErrRetriesExhausted or
// domain.ErrUnexpectedStatus; the text gathered so far is returned alongside.
func (d *ContinuationDriver) Run(
	ctx context.Context,
	base driven.GenerationRequest,
	input []driven.Message,
	maxRetries int,
) (string, error) {
	session := NewContinuationSession(maxRetries)
	if base.MaxOutputTokens <= 0 {
		base.MaxOutputTokens = d.maxOutputTokens
	}

	for !session.Done() {
		req := session.Request(base, input, d.continueText)
		logger.Debug("generation call %d via %s (previous=%q)",
			session.Attempt+1, d.service.Name(), req.PreviousResponseID)

		resp, err := d.service.Respond(ctx, req)
		if err != nil {
			session.Fail(err)
			break
		}

		status := session.Advance(resp)
		logger.Debug("generation response kind=%s status=%s -> %s (%d bytes so far)",
			resp.Kind, resp.Status, status, len(session.AccumulatedText()))
	}

	if session.Status == SessionError {
		return session.AccumulatedText(), session.Err
	}
	return session.AccumulatedText(), nil
}
