package loop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
)

// ErrInitialization reports a handler that could not be resolved. The
// loop is never entered in this case.
var ErrInitialization = errors.New("loop: initialization failed")

// State is the engine's lifecycle position.
type State string

const (
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateLooping      State = "looping"
	StateTerminated   State = "terminated"
)

// Engine owns the invocation loop. Single-threaded by design: one event is
// fully processed before the next is requested, and the only blocking
// points are the next-event call, the dispatch and the handler itself.
type Engine struct {
	*Options

	handler Handler
	state   State
	count   int64
	running atomic.Int32
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Options: NewOptions(opts...),
		state:   StateInitializing,
	}
	e.running.Store(1)
	return e
}

// Start allows the engine to keep looping.
func (e *Engine) Start() {
	e.running.Store(1)
}

// Stop makes the engine leave the loop before its next iteration.
func (e *Engine) Stop() {
	e.running.Store(0)
}

// IsRunning returns true if the engine has not been stopped.
func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Count returns how many iterations have begun.
func (e *Engine) Count() int64 {
	return e.count
}

// Run resolves the handler and drives the loop until the iteration bound
// is reached. A resolution failure sends exactly one initialization-failure
// report and returns without a single next-event request; per-invocation
// errors are the runtime client's to report and never end the loop early.
func (e *Engine) Run(ctx context.Context) error {
	if e.Client == nil {
		e.state = StateTerminated
		return fmt.Errorf("%w: no runtime client", ErrInitialization)
	}
	if e.Resolver == nil {
		e.state = StateTerminated
		return fmt.Errorf("%w: no handler resolver", ErrInitialization)
	}

	handler, err := e.Resolver()
	if err == nil && handler == nil {
		err = errors.New("resolver returned no handler")
	}
	if err != nil {
		if rerr := e.Client.ReportInitError(ctx, err); rerr != nil {
			log.Printf("[Loop] report init error: %v", rerr)
		}
		e.state = StateTerminated
		return fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	e.handler = handler
	e.state = StateReady

	e.state = StateLooping
	for e.IsRunning() {
		// The counter moves before any work; the bound is checked
		// before another event is ever requested.
		e.count++
		if e.count > e.MaxIterations {
			break
		}

		event, err := e.Client.NextEvent(ctx)
		if err != nil {
			log.Printf("[Loop] next event: %v", err)
			continue
		}

		if e.DebugMode {
			log.Printf("[Loop] iteration %d: event %s (%d bytes)", e.count, event.ID, len(event.Payload))
		}

		if err := e.Client.Dispatch(ctx, event, e.handler); err != nil {
			// Scoped to this invocation; reporting already happened
			// inside Dispatch.
			log.Printf("[Loop] dispatch %s: %v", event.ID, err)
		}
	}
	e.state = StateTerminated

	return nil
}
