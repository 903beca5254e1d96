package sqsevents

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	SQSClient SQSClient
	// RequestQueue is the queue invocation events arrive on.
	RequestQueue string
	// ResponseQueue optionally receives per-invocation results and
	// initialization failures.
	ResponseQueue string
	WaitSeconds   int32
}

func NewOptions(opts ...Option) *Options {
	options := &Options{
		WaitSeconds: 20,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	if options.SQSClient == nil {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			panic(err)
		}
		options.SQSClient = awssqs.NewFromConfig(cfg)
	}
	return options
}

// WithSQSClient injects the queue client.
func WithSQSClient(client SQSClient) Option {
	return OptionFunc(func(o *Options) {
		o.SQSClient = client
	})
}

// WithRequestQueue sets the queue events are pulled from.
func WithRequestQueue(url string) Option {
	return OptionFunc(func(o *Options) {
		o.RequestQueue = url
	})
}

// WithResponseQueue sets the queue results are published to.
func WithResponseQueue(url string) Option {
	return OptionFunc(func(o *Options) {
		o.ResponseQueue = url
	})
}

// WithWaitSeconds sets the long-poll window.
func WithWaitSeconds(seconds int32) Option {
	return OptionFunc(func(o *Options) {
		o.WaitSeconds = seconds
	})
}
