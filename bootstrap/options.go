package bootstrap

import (
	"github.com/aura-studio/coldstart/fetcher"
	"github.com/aura-studio/coldstart/installer"
	"github.com/aura-studio/coldstart/signer"
	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

const (
	// DefaultInstallPath is the fixed directory the download branch
	// unpacks into.
	DefaultInstallPath = "/tmp/coldstart/deps"
	// DefaultPath is the application-relative dependency tree used when
	// neither a download source nor a loader path is configured.
	DefaultPath = "deps"
)

type Options struct {
	// DownloadSource is a <scheme>://<bucket>/<key> locator. When set,
	// the fetch/install branch runs.
	DownloadSource string
	// LoaderPath points directly at an existing loader manifest. Only
	// consulted when DownloadSource is empty.
	LoaderPath string
	// InstallPath is where the download branch unpacks the archive.
	InstallPath string
	// DefaultPath is the fallback dependency root.
	DefaultPath string
	// ArchivePath overrides where the fetched archive is staged before
	// installation. Empty means the system temp directory.
	ArchivePath string

	Credentials signer.Credentials
	Region      string
	Expires     int64

	Fixup     installer.FixupFunc
	DebugMode bool

	// Injected collaborators; built from the fields above when nil.
	Fetcher   *fetcher.Fetcher
	Installer *installer.Installer
}

var defaultOptions = &Options{
	DownloadSource: "",
	LoaderPath:     "",
	InstallPath:    DefaultInstallPath,
	DefaultPath:    DefaultPath,
	ArchivePath:    "",
	Credentials:    signer.Credentials{},
	Region:         "",
	Expires:        signer.DefaultExpires,
	Fixup:          nil,
	DebugMode:      false,
	Fetcher:        nil,
	Installer:      nil,
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	if options.Fixup == nil {
		options.Fixup = installer.FixupManifest
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

// WithDownloadSource sets the storage locator for the fetch/install branch.
func WithDownloadSource(locator string) Option {
	return OptionFunc(func(o *Options) {
		o.DownloadSource = locator
	})
}

// WithLoaderPath sets an explicit loader manifest path.
func WithLoaderPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.LoaderPath = path
	})
}

// WithInstallPath sets the fixed install directory.
func WithInstallPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.InstallPath = path
	})
}

// WithDefaultPath sets the fallback dependency root.
func WithDefaultPath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.DefaultPath = path
	})
}

// WithArchivePath sets where the fetched archive is staged.
func WithArchivePath(path string) Option {
	return OptionFunc(func(o *Options) {
		o.ArchivePath = path
	})
}

// WithCredentials sets the storage credentials used for signing.
func WithCredentials(creds signer.Credentials) Option {
	return OptionFunc(func(o *Options) {
		o.Credentials = creds
	})
}

// WithRegion sets the storage region.
func WithRegion(region string) Option {
	return OptionFunc(func(o *Options) {
		o.Region = region
	})
}

// WithExpires sets the presigned URL validity window in seconds.
func WithExpires(seconds int64) Option {
	return OptionFunc(func(o *Options) {
		o.Expires = seconds
	})
}

// WithFixup replaces the installer's post-extraction fix-up.
func WithFixup(f installer.FixupFunc) Option {
	return OptionFunc(func(o *Options) {
		o.Fixup = f
	})
}

// WithDebugMode enables bootstrap logging.
func WithDebugMode(debug bool) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = debug
	})
}

// WithFetcher injects a fetcher, bypassing the signer construction.
func WithFetcher(f *fetcher.Fetcher) Option {
	return OptionFunc(func(o *Options) {
		o.Fetcher = f
	})
}

// WithInstaller injects an installer.
func WithInstaller(ins *installer.Installer) Option {
	return OptionFunc(func(o *Options) {
		o.Installer = ins
	})
}
