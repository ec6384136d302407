// Package workflow owns the form state and the generate → proofread flow.
package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/scgen/internal/model"
	"github.com/amishk599/scgen/internal/prompt"
)

const (
	generateFallback  = "Failed to generate response"
	proofreadFallback = "Failed to proofread response"
)

// ErrBusy is returned when an operation is already in flight.
var ErrBusy = errors.New("an operation is already in progress")

// Generator turns a prompt into generated text. *client.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// State is the session's position in the workflow.
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateProofreading
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateProofreading:
		return "proofreading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Busy reports whether a network call is outstanding.
func (s State) Busy() bool {
	return s == StateGenerating || s == StateProofreading
}

// Ticket identifies one started operation. Results carrying a stale ticket
// (superseded by Reset) are dropped.
type Ticket uint64

// Session is one user's form and results. It is not safe for concurrent use;
// callers keep it on a single goroutine and run network calls elsewhere.
type Session struct {
	form      model.FormInput
	state     State
	generated string
	proofread string
	errText   string
	ticket    Ticket
	logger    *slog.Logger
}

// NewSession returns a session holding the default form.
func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		form:   model.DefaultFormInput(),
		logger: logger,
	}
}

func (s *Session) Form() model.FormInput { return s.form }
func (s *Session) State() State          { return s.state }
func (s *Session) Generated() string     { return s.generated }
func (s *Session) ProofreadText() string { return s.proofread }
func (s *Session) Err() string           { return s.errText }

// SetForm replaces the form wholesale.
func (s *Session) SetForm(f model.FormInput) {
	s.form = f
}

// UpdateForm applies fn to the current form.
func (s *Session) UpdateForm(fn func(*model.FormInput)) {
	fn(&s.form)
}

// CanGenerate reports whether the generate trigger is enabled.
func (s *Session) CanGenerate() bool {
	return !s.state.Busy() && s.form.Ready()
}

// CanProofread reports whether the proofread trigger is enabled: generate has
// completed with text and nothing is in flight.
func (s *Session) CanProofread() bool {
	return !s.state.Busy() && s.generated != ""
}

// WordCount is the number of whitespace-delimited tokens in the generated text.
func (s *Session) WordCount() int {
	return WordCount(s.generated)
}

// CharCount is the length of the generated text in characters.
func (s *Session) CharCount() int {
	return CharCount(s.generated)
}

// BeginGenerate validates the form, moves to Generating and returns the prompt
// to send. Previous generated text, proofread text and error are cleared.
func (s *Session) BeginGenerate() (Ticket, string, error) {
	if s.state.Busy() {
		return 0, "", ErrBusy
	}
	if err := s.form.Validate(); err != nil {
		return 0, "", err
	}
	p, err := prompt.Generate(s.form)
	if err != nil {
		return 0, "", err
	}

	s.ticket++
	s.state = StateGenerating
	s.generated = ""
	s.proofread = ""
	s.errText = ""
	return s.ticket, p, nil
}

// FinishGenerate records the outcome of the call started by BeginGenerate.
func (s *Session) FinishGenerate(t Ticket, content string, err error) {
	if t != s.ticket || s.state != StateGenerating {
		s.logger.Debug("dropping stale generate result", "ticket", t, "current", s.ticket)
		return
	}
	if err != nil {
		s.logger.Error("error generating response", "error", err)
		s.state = StateFailed
		s.errText = visibleError(err, generateFallback)
		return
	}
	s.state = StateSucceeded
	s.generated = content
}

// BeginProofread returns the proofread prompt, or ok=false when the trigger is
// disabled (no generated text yet, or an operation in flight).
func (s *Session) BeginProofread() (t Ticket, p string, ok bool) {
	if !s.CanProofread() {
		return 0, "", false
	}
	p, err := prompt.Proofread(s.generated)
	if err != nil {
		s.state = StateFailed
		s.errText = err.Error()
		return 0, "", false
	}

	s.ticket++
	s.state = StateProofreading
	s.errText = ""
	return s.ticket, p, true
}

// FinishProofread records the proofread outcome. Generated text is untouched.
func (s *Session) FinishProofread(t Ticket, content string, err error) {
	if t != s.ticket || s.state != StateProofreading {
		s.logger.Debug("dropping stale proofread result", "ticket", t, "current", s.ticket)
		return
	}
	if err != nil {
		s.logger.Error("error proofreading response", "error", err)
		s.state = StateFailed
		s.errText = visibleError(err, proofreadFallback)
		return
	}
	s.state = StateSucceeded
	s.proofread = content
}

// Generate runs a full generate round trip on the calling goroutine.
func (s *Session) Generate(ctx context.Context, g Generator) error {
	t, p, err := s.BeginGenerate()
	if err != nil {
		return err
	}
	content, err := g.Generate(ctx, p)
	s.FinishGenerate(t, content, err)
	return err
}

// Proofread runs a full proofread round trip. It is a no-op returning nil
// when the proofread trigger is disabled.
func (s *Session) Proofread(ctx context.Context, g Generator) error {
	t, p, ok := s.BeginProofread()
	if !ok {
		return nil
	}
	content, err := g.Generate(ctx, p)
	s.FinishProofread(t, content, err)
	return err
}

// Reset restores the default form and clears every result. Any in-flight
// result is dropped when it arrives.
func (s *Session) Reset() {
	s.ticket++
	s.form = model.DefaultFormInput()
	s.state = StateIdle
	s.generated = ""
	s.proofread = ""
	s.errText = ""
}

// WordCount counts whitespace-delimited tokens in the trimmed text.
func WordCount(text string) int {
	return len(strings.Fields(strings.TrimSpace(text)))
}

// CharCount counts characters (runes) in the raw text.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// visibleError is the text shown to the user for err. An endpoint error with
// no message falls back to the operation's generic text.
func visibleError(err error, fallback string) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return fallback
		}
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
