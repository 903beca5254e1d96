// Package worker wires the pieces of a cold start together: resolve the
// dependency tree, resolve the handler against it, then hand control to
// the bounded event loop.
package worker

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aura-studio/coldstart/bootstrap"
	"github.com/aura-studio/coldstart/control"
	"github.com/aura-studio/coldstart/loop"
	"github.com/aura-studio/coldstart/sqsevents"
)

// Run performs one full worker lifetime and returns when the loop
// terminates. Bootstrap errors are returned before the loop ever exists;
// a half-installed dependency tree is never used.
func Run(ctx context.Context, opts ...Option) error {
	options := NewOptions(opts...)

	b := bootstrap.NewBootstrap(options.Bootstrap...)
	root, err := b.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("worker: bootstrap: %w", err)
	}

	if options.Resolver == nil {
		return fmt.Errorf("worker: no handler resolver configured")
	}

	client := options.Client
	if client == nil {
		switch options.Source {
		case SourceSQS:
			client = sqsevents.NewClient(options.SQS...)
		case SourceControl, "":
			client = control.NewClient(options.Control...)
		default:
			return fmt.Errorf("worker: unrecognized event source: %q", options.Source)
		}
	}

	loopOpts := append([]loop.Option{}, options.Loop...)
	loopOpts = append(loopOpts,
		loop.WithRuntimeClient(client),
		loop.WithResolver(func() (loop.Handler, error) {
			return options.Resolver(root)
		}),
	)

	engine := loop.NewEngine(loopOpts...)
	return engine.Run(ctx)
}

// Serve runs the worker and exits the process: status 0 when the
// iteration bound is reached, fatal log otherwise.
func Serve(opts ...Option) {
	if err := Run(context.Background(), opts...); err != nil {
		log.Fatalf("[Worker] %v", err)
	}
	os.Exit(0)
}
