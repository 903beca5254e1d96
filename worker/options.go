package worker

import (
	"github.com/aura-studio/coldstart/bootstrap"
	"github.com/aura-studio/coldstart/control"
	"github.com/aura-studio/coldstart/loop"
	"github.com/aura-studio/coldstart/sqsevents"
)

// Source names an event-source kind.
type Source string

const (
	SourceControl Source = "control"
	SourceSQS     Source = "sqs"
)

// Resolver produces the handler once the dependency root is known.
type Resolver func(root string) (loop.Handler, error)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Source    Source
	Bootstrap []bootstrap.Option
	Loop      []loop.Option
	Control   []control.Option
	SQS       []sqsevents.Option

	Resolver Resolver
	// Client overrides the source selection entirely.
	Client loop.RuntimeClient
}

func NewOptions(opts ...Option) *Options {
	options := &Options{
		Source: SourceControl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	return options
}

// WithSource picks the event source kind.
func WithSource(s Source) Option {
	return OptionFunc(func(o *Options) {
		o.Source = s
	})
}

// WithBootstrapOptions appends bootstrap options.
func WithBootstrapOptions(opts ...bootstrap.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Bootstrap = append(o.Bootstrap, opts...)
	})
}

// WithLoopOptions appends loop options.
func WithLoopOptions(opts ...loop.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Loop = append(o.Loop, opts...)
	})
}

// WithControlOptions appends control-plane client options.
func WithControlOptions(opts ...control.Option) Option {
	return OptionFunc(func(o *Options) {
		o.Control = append(o.Control, opts...)
	})
}

// WithSQSOptions appends SQS event-source options.
func WithSQSOptions(opts ...sqsevents.Option) Option {
	return OptionFunc(func(o *Options) {
		o.SQS = append(o.SQS, opts...)
	})
}

// WithResolver sets the handler resolver.
func WithResolver(r Resolver) Option {
	return OptionFunc(func(o *Options) {
		o.Resolver = r
	})
}

// WithRuntimeClient injects a runtime client, bypassing source selection.
func WithRuntimeClient(c loop.RuntimeClient) Option {
	return OptionFunc(func(o *Options) {
		o.Client = c
	})
}
