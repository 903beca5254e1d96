package fetcher

import (
	"net/http"

	"github.com/aura-studio/coldstart/signer"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Signer     *signer.Signer
	HTTPClient *http.Client
	DebugMode  bool
}

// No deepcopy here: the embedded signer and HTTP client are shared
// collaborators, not configuration to be cloned.
func NewOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	if options.Signer == nil {
		options.Signer = signer.NewSigner()
	}
	if options.HTTPClient == nil {
		// The default client follows redirects, which object storage
		// uses for cross-region requests.
		options.HTTPClient = http.DefaultClient
	}
	return options
}

// WithSigner sets the request signer used to presign each download.
func WithSigner(s *signer.Signer) Option {
	return OptionFunc(func(o *Options) {
		o.Signer = s
	})
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return OptionFunc(func(o *Options) {
		o.HTTPClient = c
	})
}

// WithDebugMode enables request logging.
func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}
