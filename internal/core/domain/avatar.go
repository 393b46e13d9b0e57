package domain

import (
	"fmt"
	"regexp"
	"time"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

// MaxUserIDLength bounds identifiers used as blob file names.
const MaxUserIDLength = 64

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateUserID rejects identifiers that could escape the avatar directory
// or collide after path cleaning.
func ValidateUserID(userID string) error {
	if userID == "" || len(userID) > MaxUserIDLength || !userIDPattern.MatchString(userID) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidUserID, userID)
	}
	return nil
}

// AvatarRecord is the last-known-good digest of a user's cached avatar.
// The first successful download is trusted; later divergence is corruption.
type AvatarRecord struct {
	UserID    string
	Digest    string
	CreatedAt time.Time
}

// AvatarResult is the outcome of an avatar read. A failed integrity check is
// reported here with Verified=false rather than as an error.
type AvatarResult struct {
	Verified bool
	Content  string // base64, empty unless Verified
}

// UnverifiedAvatar is the result returned when the cached blob does not match its record.
func UnverifiedAvatar() AvatarResult {
	return AvatarResult{Verified: false, Content: ""}
}

// AvatarInspection describes the on-disk state of a user's avatar without
// touching the origin.
type AvatarInspection struct {
	UserID         string
	Path           string
	BlobPresent    bool
	ExpectedDigest string
	ActualDigest   string
}

// Verified reports whether the cached blob exists and matches its record.
func (i AvatarInspection) Verified() bool {
	return i.BlobPresent && i.ActualDigest == i.ExpectedDigest
}
