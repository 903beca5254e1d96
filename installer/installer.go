package installer

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
)

// ErrInstall reports an archive that could not be opened or extracted.
// The orchestrator treats it as fatal to the bootstrap attempt.
var ErrInstall = errors.New("installer: install failed")

// FixupFunc runs once over the install root after extraction completes and
// before anything downstream touches the tree. The default rewrites the
// loader manifest's base path; alternate dependency-tree formats supply
// their own.
type FixupFunc func(root string) error

// Installer unpacks a downloaded archive into a fixed install directory.
type Installer struct {
	*Options
}

func NewInstaller(opts ...Option) *Installer {
	return &Installer{
		Options: NewOptions(opts...),
	}
}

// Install extracts archive into the configured install path, runs the
// fix-up, then removes the source archive. The order is load-bearing: the
// fix-up must see the complete tree, and the tree must be fixed up before
// first use.
func (ins *Installer) Install(archive string) error {
	if err := os.MkdirAll(ins.InstallPath, 0o755); err != nil {
		return fmt.Errorf("installer: create %s: %w", ins.InstallPath, err)
	}

	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrInstall, archive, err)
	}
	r.RegisterDecompressor(zip.Deflate, func(in io.Reader) io.ReadCloser {
		return flate.NewReader(in)
	})

	for _, f := range r.File {
		if err := ins.extract(f); err != nil {
			r.Close()
			return err
		}
	}
	if err := r.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrInstall, archive, err)
	}

	if ins.Fixup != nil {
		if err := ins.Fixup(ins.InstallPath); err != nil {
			return fmt.Errorf("%w: fixup: %v", ErrInstall, err)
		}
	}

	if err := os.Remove(archive); err != nil {
		return fmt.Errorf("installer: remove %s: %w", archive, err)
	}

	if ins.DebugMode {
		log.Printf("[Installer] installed %s into %s", archive, ins.InstallPath)
	}

	return nil
}

func (ins *Installer) extract(f *zip.File) error {
	rel := filepath.FromSlash(f.Name)
	dst := filepath.Join(ins.InstallPath, rel)

	// Entries must stay under the install root.
	if !strings.HasPrefix(dst, filepath.Clean(ins.InstallPath)+string(os.PathSeparator)) {
		return fmt.Errorf("%w: entry escapes install root: %s", ErrInstall, f.Name)
	}

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrInstall, dst, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrInstall, filepath.Dir(dst), err)
	}

	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %v", ErrInstall, f.Name, err)
	}
	defer in.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrInstall, dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: extract %s: %v", ErrInstall, f.Name, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrInstall, dst, err)
	}

	return nil
}
