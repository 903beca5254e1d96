package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

// ErrTransfer reports a download that failed or was cut short. The
// destination file is in an indeterminate state afterwards; callers must
// discard it explicitly before retrying.
var ErrTransfer = errors.New("fetcher: transfer failed")

// Fetcher materializes a signed URL's content as a local file.
type Fetcher struct {
	*Options
}

func NewFetcher(opts ...Option) *Fetcher {
	return &Fetcher{
		Options: NewOptions(opts...),
	}
}

// Fetch downloads the object named by locator to dst. The URL is signed
// fresh per call so retries never reuse a window that may have lapsed.
// Any pre-existing file at dst is removed first.
func (f *Fetcher) Fetch(ctx context.Context, locator string, dst string) error {
	loc, err := ParseLocator(locator)
	if err != nil {
		return err
	}

	url, err := f.Signer.PresignGet(loc.Bucket, loc.Key)
	if err != nil {
		return err
	}

	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("fetcher: remove %s: %w", dst, err)
	}

	if f.DebugMode {
		log.Printf("[Fetcher] GET %s://%s/%s -> %s", loc.Scheme, loc.Bucket, loc.Key, dst)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("fetcher: build request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: status %d", ErrTransfer, loc, resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("fetcher: create %s: %w", dst, err)
	}

	// Stream straight to disk; the archive never sits whole in memory.
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("%w: %s: %v", ErrTransfer, loc, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrTransfer, dst, err)
	}

	return nil
}
