package origin_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/user-registry/internal/adapters/secondary/origin"
	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(payload)
		case "/big.png":
			_, _ = w.Write(bytes.Repeat([]byte{1}, 64))
		case "/stream.png":
			for i := 0; i < 8; i++ {
				_, _ = w.Write(bytes.Repeat([]byte{2}, 16))
				w.(http.Flusher).Flush()
			}
		case "/slow.png":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := origin.NewHTTPFetcher(time.Second, 32)
		rc, err := f.Fetch(ctx, srv.URL+"/ok.png")
		require.NoError(t, err)
		defer rc.Close()

		got, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("non-2xx is a network error", func(t *testing.T) {
		f := origin.NewHTTPFetcher(time.Second, 32)
		_, err := f.Fetch(ctx, srv.URL+"/missing.png")
		assert.ErrorIs(t, err, apperrors.ErrNetwork)
	})

	t.Run("declared length over limit", func(t *testing.T) {
		f := origin.NewHTTPFetcher(time.Second, 32)
		_, err := f.Fetch(ctx, srv.URL+"/big.png")
		assert.ErrorIs(t, err, apperrors.ErrNetwork)
	})

	t.Run("streamed body over limit", func(t *testing.T) {
		f := origin.NewHTTPFetcher(time.Second, 32)
		rc, err := f.Fetch(ctx, srv.URL+"/stream.png")
		require.NoError(t, err)
		defer rc.Close()

		_, err = io.ReadAll(rc)
		assert.ErrorIs(t, err, apperrors.ErrNetwork)
	})

	t.Run("timeout", func(t *testing.T) {
		f := origin.NewHTTPFetcher(50*time.Millisecond, 32)
		_, err := f.Fetch(ctx, srv.URL+"/slow.png")
		assert.ErrorIs(t, err, apperrors.ErrTimeout)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		f := origin.NewHTTPFetcher(time.Second, 32)
		_, err := f.Fetch(ctx, "file:///etc/passwd")
		assert.ErrorIs(t, err, apperrors.ErrNetwork)
	})

	t.Run("unreachable host", func(t *testing.T) {
		f := origin.NewHTTPFetcher(time.Second, 32)
		_, err := f.Fetch(ctx, "http://127.0.0.1:1/a.png")
		assert.ErrorIs(t, err, apperrors.ErrNetwork)
	})
}
