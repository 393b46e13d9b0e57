// Package filestore keeps one cached avatar image per user on local disk.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lorrc/user-registry/internal/core/domain"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

const blobExt = ".jpg"

// Store is a filesystem-backed ports.BlobStore rooted at a directory it owns.
type Store struct {
	root string
}

var _ ports.BlobStore = (*Store)(nil)

// New creates a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("%w: avatar storage dir is required", apperrors.ErrIO)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", apperrors.ErrIO, abs, err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute storage directory.
func (s *Store) Root() string {
	return s.root
}

// Path maps userID to <root>/<userID>.jpg. IDs are validated so distinct IDs
// never collide and never escape the root.
func (s *Store) Path(userID string) (string, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, userID+blobExt), nil
}

func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.Path(userID)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return info.Mode().IsRegular(), nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: stat %s: %w", apperrors.ErrIO, path, err)
	}
}

// Write streams r into a temp file beside the target and renames it into
// place. Any failure removes the temp file, so readers never observe a
// partial blob. Errors from r are returned as-is.
func (s *Store) Write(ctx context.Context, userID string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if r == nil {
		return 0, fmt.Errorf("%w: reader is required", apperrors.ErrIO)
	}
	dst, err := s.Path(userID)
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.root, "."+userID+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if err != nil {
		cleanup()
		if errors.Is(err, apperrors.ErrNetwork) || errors.Is(err, apperrors.ErrTimeout) {
			return n, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return n, fmt.Errorf("%w: %w", apperrors.ErrTimeout, ctxErr)
		}
		return n, fmt.Errorf("%w: writing %s: %w", apperrors.ErrIO, dst, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return n, fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return n, fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return n, fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	return n, nil
}

func (s *Store) Open(ctx context.Context, userID string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.Path(userID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	return f, nil
}

// Remove deletes the user's blob. Missing files are ignored.
func (s *Store) Remove(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.Path(userID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %w", apperrors.ErrIO, err)
	}
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
