// Package fetch retrieves shapefile components from HTTP(S) URLs or the local
// filesystem.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"
)

// Fetcher retrieves the bytes at location, or at location + "." + suffix when
// suffix is non-empty.
type Fetcher interface {
	Fetch(ctx context.Context, location, suffix string) ([]byte, error)
}

// Error reports a failed retrieval.
type Error struct {
	Location   string
	StatusCode int // HTTP status, 0 for transport and filesystem errors
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Location, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Location, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports whether the component does not exist (HTTP 404 or a missing file).
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || errors.Is(e.Err, fs.ErrNotExist)
}

// Client fetches over HTTP for http/https locations and from disk otherwise.
type Client struct {
	HTTP *http.Client
}

// NewClient creates a client whose HTTP requests time out after timeout.
// A zero timeout means no timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: timeout}}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, location, suffix string) ([]byte, error) {
	target := Join(location, suffix)

	if u, ok := parseRemote(target); ok {
		return c.fetchHTTP(ctx, u.String())
	}
	return fetchFile(ctx, localPath(target))
}

func (c *Client) fetchHTTP(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Location: target, Err: err}
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Location: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Location: target, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Location: target, Err: err}
	}
	return data, nil
}

func fetchFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, &Error{Location: name, Err: err}
	}
	return data, nil
}

// Join appends "." + suffix to the path of location. Query strings and
// fragments of URLs are preserved.
func Join(location, suffix string) string {
	if suffix == "" {
		return location
	}
	if u, ok := parseRemote(location); ok {
		u.Path = u.Path + "." + suffix
		u.RawPath = ""
		return u.String()
	}
	if u, ok := parseFileURL(location); ok {
		u.Path = u.Path + "." + suffix
		return u.String()
	}
	return location + "." + suffix
}

// Base returns the trailing path segment of a URL or filesystem location.
func Base(location string) string {
	if u, ok := parseRemote(location); ok {
		return path.Base(u.Path)
	}
	return path.Base(strings.ReplaceAll(localPath(location), "\\", "/"))
}

func parseRemote(location string) (*url.URL, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, true
	default:
		return nil, false
	}
}

func parseFileURL(location string) (*url.URL, bool) {
	if !strings.HasPrefix(strings.ToLower(location), "file://") {
		return nil, false
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, false
	}
	return u, true
}

func localPath(location string) string {
	if u, ok := parseFileURL(location); ok {
		return u.Path
	}
	return location
}
