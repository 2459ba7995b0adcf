package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// maxResourceSize caps a single startup resource.
const maxResourceSize = 16 << 20

// Fetcher retrieves a startup resource as text. Paths are relative to the
// asset root, e.g. "texture_list.txt" or "maps/Atrium.map".
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// StatusError is a completed request with a non-success response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// HTTPFetcher fetches resources with plain GET requests below a base URL.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPFetcher creates a fetcher rooted at base. A nil client means
// http.DefaultClient, which has no timeout.
func NewHTTPFetcher(base string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: bad asset URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("bootstrap: asset URL %q must be http or https", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{base: u, client: client}, nil
}

// URL resolves a resource path against the base URL.
func (f *HTTPFetcher) URL(path string) string {
	ref := &url.URL{Path: path}
	return f.base.ResolveReference(ref).String()
}

// Fetch implements Fetcher. Anything but 200 OK is a *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (string, error) {
	target := f.URL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		//nolint:errcheck // Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}
	if len(body) > maxResourceSize {
		return "", fmt.Errorf("read %s: larger than %d bytes", target, maxResourceSize)
	}
	return string(body), nil
}

// FSFetcher reads resources from a file system, e.g. a local asset checkout.
type FSFetcher struct {
	fsys fs.FS
}

// NewFSFetcher creates a fetcher reading from fsys.
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{fsys: fsys}
}

// Fetch implements Fetcher. A missing file is reported as a 404 *StatusError
// so local and remote assets fail the same way.
func (f *FSFetcher) Fetch(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(f.fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &StatusError{URL: path, Code: http.StatusNotFound}
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewFetcher picks a fetcher for location: an http(s) URL or a local directory.
func NewFetcher(location string, client *http.Client) (Fetcher, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPFetcher(location, client)
	}
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bootstrap: asset location %q is not a directory", location)
	}
	return NewFSFetcher(os.DirFS(location)), nil
}
