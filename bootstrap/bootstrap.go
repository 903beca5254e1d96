package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/aura-studio/coldstart/fetcher"
	"github.com/aura-studio/coldstart/installer"
	"github.com/aura-studio/coldstart/signer"
)

// ErrConfiguration reports missing or malformed bootstrap configuration.
var ErrConfiguration = errors.New("bootstrap: invalid configuration")

// State is the orchestrator's lifecycle position.
type State string

const (
	StateUnresolved State = "unresolved"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// Bootstrap decides, once per process start, how the dependency tree
// becomes available. Three mutually exclusive branches in priority order:
// download-and-install from a storage locator, load from an explicit
// loader path, or load from the default application-relative path.
//
// The loader manifest on disk is the cross-process install-state truth: a
// warm container that already ran the install branch skips it entirely on
// the next process start. The in-process guard below only prevents a
// double Resolve within one process; it never substitutes for the
// filesystem check.
type Bootstrap struct {
	*Options

	resolved atomic.Int32
	state    State
	root     string
	err      error
}

func NewBootstrap(opts ...Option) *Bootstrap {
	return &Bootstrap{
		Options: NewOptions(opts...),
		state:   StateUnresolved,
	}
}

// State returns the current lifecycle state.
func (b *Bootstrap) State() State {
	return b.state
}

// Root returns the resolved dependency root. Valid only once Resolve has
// returned without error.
func (b *Bootstrap) Root() string {
	return b.root
}

// Resolve runs the bootstrap decision at most once per process lifetime
// and returns the directory holding the loader manifest. Errors here are
// fatal to the process: a half-installed tree must never be used.
func (b *Bootstrap) Resolve(ctx context.Context) (string, error) {
	if !b.resolved.CompareAndSwap(0, 1) {
		return b.root, b.err
	}

	b.root, b.err = b.resolve(ctx)
	if b.err != nil {
		b.state = StateFailed
	} else {
		b.state = StateReady
	}
	return b.root, b.err
}

func (b *Bootstrap) resolve(ctx context.Context) (string, error) {
	switch {
	case b.DownloadSource != "":
		return b.resolveDownload(ctx)
	case b.LoaderPath != "":
		return b.resolveLoader()
	default:
		return b.DefaultPath, nil
	}
}

func (b *Bootstrap) resolveDownload(ctx context.Context) (string, error) {
	if installer.ManifestExists(b.InstallPath) {
		if b.DebugMode {
			log.Printf("[Bootstrap] manifest present at %s, install skipped", b.InstallPath)
		}
		return b.InstallPath, nil
	}

	archive := b.ArchivePath
	if archive == "" {
		archive = filepath.Join(os.TempDir(), filepath.Base(b.DownloadSource))
	}

	if err := b.fetcher().Fetch(ctx, b.DownloadSource, archive); err != nil {
		return "", err
	}

	if err := b.installer().Install(archive); err != nil {
		return "", err
	}

	if b.DebugMode {
		log.Printf("[Bootstrap] installed %s into %s", b.DownloadSource, b.InstallPath)
	}

	return b.InstallPath, nil
}

func (b *Bootstrap) resolveLoader() (string, error) {
	st, err := os.Stat(b.LoaderPath)
	if err != nil {
		return "", fmt.Errorf("%w: loader path %s: %v", ErrConfiguration, b.LoaderPath, err)
	}
	if st.IsDir() {
		return "", fmt.Errorf("%w: loader path %s is a directory", ErrConfiguration, b.LoaderPath)
	}
	return filepath.Dir(b.LoaderPath), nil
}

func (b *Bootstrap) fetcher() *fetcher.Fetcher {
	if b.Fetcher != nil {
		return b.Fetcher
	}
	b.Fetcher = fetcher.NewFetcher(
		fetcher.WithSigner(signer.NewSigner(
			signer.WithCredentials(b.Credentials),
			signer.WithRegion(b.Region),
			signer.WithExpires(b.Expires),
		)),
		fetcher.WithDebugMode(b.DebugMode),
	)
	return b.Fetcher
}

func (b *Bootstrap) installer() *installer.Installer {
	if b.Installer != nil {
		return b.Installer
	}
	b.Installer = installer.NewInstaller(
		installer.WithInstallPath(b.InstallPath),
		installer.WithFixup(b.Fixup),
		installer.WithDebugMode(b.DebugMode),
	)
	return b.Installer
}
