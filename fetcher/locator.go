package fetcher

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidLocation reports a resource locator that does not match the
// <scheme>://<bucket>/<key> shape. Surfaced before any network activity.
var ErrInvalidLocation = errors.New("fetcher: invalid resource locator")

// Locator identifies one object in storage.
type Locator struct {
	Scheme string
	Bucket string
	Key    string
}

var locatorPattern = regexp.MustCompile(`^([a-z][a-z0-9+.-]*)://([^/]+)/(.+)$`)

// ParseLocator splits a <scheme>://<bucket>/<key> string by structural
// match. The key may itself contain slashes.
func ParseLocator(s string) (Locator, error) {
	m := locatorPattern.FindStringSubmatch(s)
	if m == nil {
		return Locator{}, fmt.Errorf("%w: %q", ErrInvalidLocation, s)
	}
	return Locator{Scheme: m[1], Bucket: m[2], Key: m[3]}, nil
}

func (l Locator) String() string {
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}
