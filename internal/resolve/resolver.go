// File: internal/resolve/resolver.go
// Description: Translates a human-facing repository reference into the
// owner/repo pair the contents-API listing is addressed by. Pure string
// work; no network access happens here.

package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// HostPrefix is the required prefix for repository references.
const HostPrefix = "https://github.com/"

// ErrInvalidReference indicates a malformed repository locator. It is
// fatal and never retried.
var ErrInvalidReference = errors.New("invalid repository reference")

// Endpoint identifies the top-level listing endpoint for a repository.
// It is immutable once produced by Resolve.
type Endpoint struct {
	Owner string
	Repo  string
}

// String renders the contents-API URL the endpoint corresponds to. Used
// for diagnostics only; the API client builds its own request URLs.
func (e Endpoint) String() string {
	return fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/", e.Owner, e.Repo)
}

// Resolve validates a repository reference and derives its listing
// endpoint. The reference must start with HostPrefix and carry at least
// an owner and a repository name; a trailing ".git" suffix and trailing
// slashes are tolerated since clone URLs are commonly pasted verbatim.
func Resolve(reference string) (Endpoint, error) {
	if !strings.HasPrefix(reference, HostPrefix) {
		return Endpoint{}, fmt.Errorf("%w: %q must start with %s", ErrInvalidReference, reference, HostPrefix)
	}

	rest := strings.Trim(strings.TrimPrefix(reference, HostPrefix), "/")
	rest = strings.TrimSuffix(rest, ".git")

	segments := strings.Split(rest, "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return Endpoint{}, fmt.Errorf("%w: %q must name an owner and a repository", ErrInvalidReference, reference)
	}

	return Endpoint{Owner: segments[0], Repo: segments[1]}, nil
}
