package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/mindcheck/internal/llm"
)

// ErrBusy is returned when an action is attempted while another one is
// still waiting on an external call.
var ErrBusy = errors.New("another operation is in progress")

// StageError is returned when an action is not allowed in the current stage.
type StageError struct {
	Action string
	Stage  Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("cannot %s during stage %q", e.Action, e.Stage)
}

// ValidationError is a user-correctable problem shown inline.
type ValidationError struct {
	Message string

	// Missing lists unanswered question indices, if that was the cause.
	Missing []int
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Kind classifies an error for display.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindMalformed   Kind = "malformed"
	KindTimeout     Kind = "timeout"
	KindUnavailable Kind = "unavailable"
	KindGeneral     Kind = "general"
)

// Title returns a short heading for the error view.
func (k Kind) Title() string {
	switch k {
	case KindValidation:
		return "Please check your input"
	case KindMalformed:
		return "Malformed upstream response"
	case KindTimeout:
		return "The request timed out"
	case KindUnavailable:
		return "Service unavailable"
	default:
		return "Something went wrong"
	}
}

// KindOf classifies err. It returns "" for a nil error.
func KindOf(err error) Kind {
	var (
		valErr    *ValidationError
		invalid   *llm.ErrInvalidResponse
		truncated *llm.ErrMaxTokensExceeded
		timeout   *llm.ErrTimeout
		unavail   *llm.ErrProviderUnavailable
		rateLimit *llm.ErrRateLimit
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &invalid), errors.As(err, &truncated):
		return KindMalformed
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &unavail), errors.As(err, &rateLimit):
		return KindUnavailable
	default:
		return KindGeneral
	}
}
