package installer

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	InstallPath string
	Fixup       FixupFunc
	DebugMode   bool
}

func NewOptions(opts ...Option) *Options {
	options := &Options{
		Fixup: FixupManifest,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}
	return options
}

// WithInstallPath sets the directory the archive is unpacked into.
func WithInstallPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.InstallPath = path
	})
}

// WithFixup replaces the post-extraction fix-up step. A nil fix-up skips
// the step entirely.
func WithFixup(f FixupFunc) Option {
	return OptionFunc(func(o *Options) {
		o.Fixup = f
	})
}

// WithDebugMode enables install logging.
func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}
