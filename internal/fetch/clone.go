// File: internal/fetch/clone.go
package fetch

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
)

// CloneScoped clones the repository at reference into a fresh temporary
// directory and returns the directory together with a cleanup function.
// The cleanup is safe to defer unconditionally: it is returned on every
// path, including failures, and removing an already-removed directory is
// a no-op. This is the one hard resource-safety requirement in the
// system — the clone must not outlive the run regardless of how analysis
// ends.
func CloneScoped(ctx context.Context, reference string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "compliscan-clone-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("%w: cannot create temporary clone directory: %v", ErrRetrieval, err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	if _, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: reference}); err != nil {
		cleanup()
		return "", cleanup, fmt.Errorf("%w: cloning %s: %v", ErrRetrieval, reference, err)
	}
	return dir, cleanup, nil
}
