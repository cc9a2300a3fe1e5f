package session

import (
	"errors"

	"bracketbuddy/internal/prediction"
	"bracketbuddy/internal/scatter"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrClosed         = errors.New("session closed")
)

// Outcome kinds recorded in the render log and returned in error bodies.
const (
	KindOK             = "ok"
	KindStale          = "stale_response"
	KindPayload        = "payload"
	KindNonFiniteRange = "non_finite_range"
	KindNotInitialized = "not_initialized"
	KindIncomplete     = "incomplete_selection"
	KindUnknownSession = "unknown_session"
	KindInternal       = "internal"
)

// ErrorKind classifies err into one of the outcome kinds. Fetch failures use
// their FetchKind.
func ErrorKind(err error) string {
	if err == nil {
		return KindOK
	}
	var fe *prediction.FetchError
	var pe *prediction.PayloadError
	switch {
	case errors.Is(err, prediction.ErrStaleResponse):
		return KindStale
	case errors.As(err, &fe):
		return string(fe.Kind)
	case errors.As(err, &pe):
		return KindPayload
	case errors.Is(err, scatter.ErrNonFiniteRange):
		return KindNonFiniteRange
	case errors.Is(err, scatter.ErrNotInitialized):
		return KindNotInitialized
	case errors.Is(err, prediction.ErrIncompleteSelection):
		return KindIncomplete
	case errors.Is(err, ErrUnknownSession), errors.Is(err, ErrClosed):
		return KindUnknownSession
	default:
		return KindInternal
	}
}
