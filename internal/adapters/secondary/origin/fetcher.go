// Package origin downloads avatar images from their origin URLs.
package origin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 5 << 20
)

// HTTPFetcher fetches avatar bytes over HTTP(S).
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

var _ ports.OriginFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher whose whole exchange, body included, is
// bounded by timeout. Bodies larger than maxBytes are rejected.
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch starts the download and returns the response body. Errors are
// ErrNetwork for transport failures, bad URLs, non-2xx statuses and oversize
// bodies, and ErrTimeout when the deadline passes.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse origin url: %w", apperrors.ErrNetwork, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported origin scheme %q", apperrors.ErrNetwork, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build origin request: %w", apperrors.ErrNetwork, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err, "origin request")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: origin returned %s", apperrors.ErrNetwork, resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: origin body of %d bytes exceeds limit of %d", apperrors.ErrNetwork, resp.ContentLength, f.maxBytes)
	}

	return &cappedBody{
		body:  resp.Body,
		r:     io.LimitReader(resp.Body, f.maxBytes+1),
		limit: f.maxBytes,
	}, nil
}

// cappedBody fails once more than limit bytes have been read.
type cappedBody struct {
	body  io.ReadCloser
	r     io.Reader
	limit int64
	read  int64
}

func (c *cappedBody) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.limit {
		return n, fmt.Errorf("%w: origin body exceeds limit of %d bytes", apperrors.ErrNetwork, c.limit)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, classify(err, "origin body")
	}
	return n, err
}

func (c *cappedBody) Close() error {
	return c.body.Close()
}

func classify(err error, op string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrNetwork, op, err)
}
