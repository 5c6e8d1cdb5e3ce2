package generation

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrTransport covers an unreachable service, a non-200 status or an expired deadline.
	ErrTransport = errors.New("generation transport error")
	// ErrSchema means the service answered, but not in the required shape.
	ErrSchema = errors.New("generation schema error")
)

// Request is a single generation request sent to the completion service.
type Request struct {
	ID     string          `json:"request_id,omitempty"`
	Prompt string          `json:"prompt"`
	Mode   HealthMode      `json:"mode"`
	Schema json.RawMessage `json:"schema"`
}

// NewRequest builds a request carrying the fixed response schema for mode.
func NewRequest(mode HealthMode, prompt string) Request {
	return Request{
		Prompt: prompt,
		Mode:   mode,
		Schema: Schema(mode),
	}
}

type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureSchema    FailureKind = "schema"
)

// Failure describes why a generation produced no usable segment.
type Failure struct {
	Kind   FailureKind `json:"kind"`
	Reason string      `json:"reason"`
}

// Result is the outcome of one generation. Exactly one of the success fields
// or Failure is meaningful: when Failure is nil the result is a success.
//
// Health holds the absolute health value in HealthModeAbsolute and the signed
// change in HealthModeDelta.
type Result struct {
	RequestID string     `json:"request_id,omitempty"`
	Mode      HealthMode `json:"mode"`
	Story     string     `json:"story,omitempty"`
	Health    int        `json:"health"`
	Options   []string   `json:"options,omitempty"`
	Failure   *Failure   `json:"failure,omitempty"`
}

// Success constructs a successful result.
func Success(mode HealthMode, story string, health int, options []string) Result {
	return Result{
		Mode:    mode,
		Story:   story,
		Health:  health,
		Options: options,
	}
}

// Failed constructs a failed result.
func Failed(kind FailureKind, reason string) Result {
	return Result{
		Failure: &Failure{Kind: kind, Reason: reason},
	}
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns nil for a success, otherwise an error wrapping ErrTransport or ErrSchema.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	switch r.Failure.Kind {
	case FailureSchema:
		return fmt.Errorf("%w: %s", ErrSchema, r.Failure.Reason)
	default:
		return fmt.Errorf("%w: %s", ErrTransport, r.Failure.Reason)
	}
}

// WithRequestID returns a copy of r tagged with id.
func (r Result) WithRequestID(id string) Result {
	r.RequestID = id
	return r
}
