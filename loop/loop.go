// Package loop drives invocation processing for the lifetime of the
// process: resolve the handler once, then pull-dispatch-report one event
// at a time until the iteration bound is reached.
package loop

import (
	"context"
	"time"
)

// Event is one invocation pulled from the control plane. The payload is
// opaque to the loop.
type Event struct {
	ID                 string
	Payload            []byte
	Deadline           time.Time
	InvokedFunctionARN string
}

// Handler processes one invocation payload. Resolved once per process and
// never swapped.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)

// Resolver produces the handler after dependencies are ready.
type Resolver func() (Handler, error)

// RuntimeClient is the external control-plane collaborator. Dispatch owns
// per-invocation result and error reporting; ReportInitError is the
// distinguished channel for a failed initialization and is never used for
// regular invocation outcomes.
type RuntimeClient interface {
	NextEvent(ctx context.Context) (*Event, error)
	Dispatch(ctx context.Context, event *Event, handler Handler) error
	ReportInitError(ctx context.Context, cause error) error
}
