package signer

import (
	"time"

	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

// DefaultExpires is one full day, the widest validity window a presigned
// URL is given here.
const DefaultExpires int64 = 86400

type Options struct {
	Credentials Credentials
	Region      string
	// Expires is the validity window in seconds. A value <= 0 emits no
	// expiry parameter at all; such a URL is only usable immediately.
	Expires int64
	// Now supplies the signing clock. Injectable so a fixed timestamp
	// yields a byte-identical URL.
	Now func() time.Time
}

var defaultOptions = &Options{
	Credentials: Credentials{},
	Region:      "",
	Expires:     DefaultExpires,
	Now:         nil,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	if options.Now == nil {
		options.Now = time.Now
	}
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

// WithCredentials sets the signing identity.
func WithCredentials(creds Credentials) Option {
	return OptionFunc(func(o *Options) {
		o.Credentials = creds
	})
}

// WithRegion sets the region used for both the endpoint and the
// credential scope.
func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		o.Region = region
	})
}

// WithExpires sets the validity window in seconds.
func WithExpires(seconds int64) Option {
	return OptionFunc(func(o *Options) {
		o.Expires = seconds
	})
}

// WithClock overrides the signing clock.
func WithClock(now func() time.Time) Option {
	return OptionFunc(func(o *Options) {
		o.Now = now
	})
}
