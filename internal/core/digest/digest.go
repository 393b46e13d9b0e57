// Package digest computes the content fingerprints used to verify cached avatars.
package digest

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

// Algorithm names the hash behind every digest this package produces.
const Algorithm = "sha512"

// Reader streams r through SHA-512 and returns the lowercase hex digest.
// Memory use is bounded by the copy buffer, not the input size.
func Reader(r io.Reader) (string, error) {
	h := sha512.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("%w: hashing content: %w", apperrors.ErrIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the digest of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", apperrors.ErrIO, path, err)
	}
	defer f.Close()

	return Reader(f)
}

// Bytes returns the digest of b.
func Bytes(b []byte) string {
	sum := sha512.Sum512(b)
	return hex.EncodeToString(sum[:])
}
