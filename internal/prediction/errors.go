package prediction

import (
	"errors"
	"fmt"
	"strings"

	"bracketbuddy/internal/pkg/text"
)

// maxErrorBodyInMessage bounds how much of an upstream error page ends up in Error().
const maxErrorBodyInMessage = 256

var (
	ErrIncompleteSelection = errors.New("incomplete selection")
	ErrStaleResponse       = errors.New("stale prediction response")
)

// FetchKind classifies how a fetch failed.
type FetchKind string

const (
	KindTransport   FetchKind = "transport"
	KindStatus      FetchKind = "status"
	KindDecode      FetchKind = "decode"
	KindCanceled    FetchKind = "canceled"
	KindCircuitOpen FetchKind = "circuit_open"
)

// FetchError reports a failed request to the prediction API.
type FetchError struct {
	Kind       FetchKind
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "prediction fetch failed (%s)", e.Kind)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " status=%d", e.StatusCode)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " url=%s", e.URL)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", text.Truncate(e.Body, maxErrorBodyInMessage))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// PayloadError reports a response that is JSON but not a usable prediction.
// Index is -1 when the problem is not tied to one element.
type PayloadError struct {
	Field  string
	Index  int
	Reason string
	Err    error
}

func (e *PayloadError) Error() string {
	loc := e.Field
	if loc == "" {
		loc = "payload"
	}
	if e.Index >= 0 {
		loc = fmt.Sprintf("%s[%d]", loc, e.Index)
	}
	msg := fmt.Sprintf("invalid prediction payload at %s: %s", loc, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PayloadError) Unwrap() error { return e.Err }

func payloadErr(field string, index int, reason string, err error) *PayloadError {
	return &PayloadError{Field: field, Index: index, Reason: reason, Err: err}
}

// IsFetchKind reports whether err wraps a FetchError of the given kind.
func IsFetchKind(err error, kind FetchKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}
