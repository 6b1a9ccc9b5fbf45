// File: internal/fetch/fetcher.go
// Description: Enumerates a repository's contents through the listing API
// and stages eligible source files into a local working directory.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v58/github"
	"go.uber.org/zap"

	"github.com/grcops/compliscan/internal/resolve"
)

// ErrRetrieval indicates the listing request or repository acquisition
// failed. It is fatal and never retried.
var ErrRetrieval = errors.New("repository retrieval failed")

// StagedFile records one remote file copied into the staging directory.
type StagedFile struct {
	// Name is the base filename the content was staged under.
	Name string
	// Path is the absolute local path of the staged copy.
	Path string
	// RemoteURL is the download URL the content came from.
	RemoteURL string
}

// Fetcher retrieves repository contents via the listing API. The API
// client is injected so tests can point it at a local server.
type Fetcher struct {
	api       *github.Client
	http      *http.Client
	extension string
	logger    *zap.Logger
}

// NewFetcher creates a Fetcher. A nil httpClient falls back to
// http.DefaultClient; a nil logger to a no-op logger.
func NewFetcher(api *github.Client, httpClient *http.Client, extension string, logger *zap.Logger) (*Fetcher, error) {
	if api == nil {
		return nil, fmt.Errorf("cannot create fetcher with a nil API client")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if extension == "" {
		extension = ".py"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{api: api, http: httpClient, extension: extension, logger: logger}, nil
}

// Retrieve recursively enumerates the repository rooted at ep and stages
// every file with the recognized extension under dest, creating dest if
// absent. Listing failures are fatal (ErrRetrieval). A single download
// failure is logged and skipped so one bad file cannot sink the run.
func (f *Fetcher) Retrieve(ctx context.Context, ep resolve.Endpoint, dest string) ([]StagedFile, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("%w: cannot create staging directory %s: %v", ErrRetrieval, dest, err)
	}
	// The accumulator is threaded through the recursion explicitly; no
	// shared container survives across Retrieve calls.
	return f.retrieveDir(ctx, ep, "", dest, nil)
}

// retrieveDir lists one directory level and recurses into subdirectories,
// appending staged files to acc.
func (f *Fetcher) retrieveDir(ctx context.Context, ep resolve.Endpoint, path, dest string, acc []StagedFile) ([]StagedFile, error) {
	_, entries, listResp, err := f.api.Repositories.GetContents(ctx, ep.Owner, ep.Repo, path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s/%s %q: %v", ErrRetrieval, ep.Owner, ep.Repo, path, err)
	}
	// Status codes are compared as numbers. The API client already rejects
	// non-2xx responses, but the contract here is explicit about it.
	if listResp != nil && listResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: listing %s/%s %q: unexpected status %d", ErrRetrieval, ep.Owner, ep.Repo, path, listResp.StatusCode)
	}

	for _, entry := range entries {
		switch entry.GetType() {
		case "dir":
			acc, err = f.retrieveDir(ctx, ep, entry.GetPath(), dest, acc)
			if err != nil {
				return nil, err
			}
		case "file":
			if !strings.EqualFold(filepath.Ext(entry.GetName()), f.extension) {
				f.logger.Info("Skipping non-source file", zap.String("name", entry.GetName()))
				continue
			}
			staged, err := f.download(ctx, entry, dest)
			if err != nil {
				f.logger.Warn("Skipping file after failed download",
					zap.String("name", entry.GetName()),
					zap.Error(err))
				continue
			}
			acc = append(acc, staged)
		default:
			f.logger.Debug("Ignoring unsupported entry type",
				zap.String("name", entry.GetName()),
				zap.String("type", entry.GetType()))
		}
	}
	return acc, nil
}

// download fetches one file's content and writes it into dest under its
// base filename.
func (f *Fetcher) download(ctx context.Context, entry *github.RepositoryContent, dest string) (StagedFile, error) {
	url := entry.GetDownloadURL()
	if url == "" {
		return StagedFile{}, fmt.Errorf("entry %s has no download URL", entry.GetName())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StagedFile{}, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return StagedFile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StagedFile{}, fmt.Errorf("download of %s returned status %d", url, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return StagedFile{}, err
	}

	localPath := filepath.Join(dest, entry.GetName())
	if err := os.WriteFile(localPath, content, 0o644); err != nil {
		return StagedFile{}, err
	}

	f.logger.Debug("Staged file",
		zap.String("name", entry.GetName()),
		zap.String("path", localPath))
	return StagedFile{Name: entry.GetName(), Path: localPath, RemoteURL: url}, nil
}
