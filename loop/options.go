package loop

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

// DefaultMaxIterations bounds container reuse to a single invocation per
// process unless configured otherwise.
const DefaultMaxIterations int64 = 1

type Options struct {
	// MaxIterations is the loop bound. 0 means exit immediately with
	// zero event requests.
	MaxIterations int64
	DebugMode     bool

	Client   RuntimeClient
	Resolver Resolver
}

// Collaborators make defaultOptions unsuitable for a deepcopy template;
// options start from a fresh value instead.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		MaxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	return options
}

// WithMaxIterations sets the loop bound.
func WithMaxIterations(n int64) Option {
	return OptionFunc(func(o *Options) {
		o.MaxIterations = n
	})
}

// WithDebugMode enables per-iteration logging.
func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

// WithRuntimeClient sets the control-plane collaborator.
func WithRuntimeClient(c RuntimeClient) Option {
	return OptionFunc(func(o *Options) {
		o.Client = c
	})
}

// WithResolver sets the handler resolver.
func WithResolver(r Resolver) Option {
	return OptionFunc(func(o *Options) {
		o.Resolver = r
	})
}
