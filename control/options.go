package control

import (
	"net/http"
	"os"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

// EnvAddress is the environment value naming the control-plane endpoint.
const EnvAddress = "AWS_LAMBDA_RUNTIME_API"

type Options struct {
	// Address is the control-plane host:port.
	Address    string
	HTTPClient *http.Client
}

func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	if options.Address == "" {
		options.Address = os.Getenv(EnvAddress)
	}
	if options.HTTPClient == nil {
		// No client timeout: the next-event call blocks for as long as
		// the platform keeps the container idle.
		options.HTTPClient = &http.Client{}
	}
	return options
}

// WithAddress sets the control-plane host:port.
func WithAddress(addr string) Option {
	return OptionFunc(func(o *Options) {
		o.Address = addr
	})
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return OptionFunc(func(o *Options) {
		o.HTTPClient = c
	})
}
