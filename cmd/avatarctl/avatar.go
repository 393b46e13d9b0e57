package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/lorrc/user-registry/internal/adapters/secondary/filestore"
	"github.com/lorrc/user-registry/internal/config"
	"github.com/lorrc/user-registry/internal/core/digest"
)

var errVerifyFailed = errors.New("avatar verification failed")

type digestOutput struct {
	File      string `json:"file"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

type pathOutput struct {
	UserID string `json:"user_id"`
	Path   string `json:"path"`
}

type verifyOutput struct {
	UserID         string `json:"user_id"`
	Path           string `json:"path"`
	BlobPresent    bool   `json:"blob_present"`
	ExpectedDigest string `json:"expected_digest"`
	ActualDigest   string `json:"actual_digest,omitempty"`
	Verified       bool   `json:"verified"`
}

type deleteOutput struct {
	UserID  string `json:"user_id"`
	Deleted bool   `json:"deleted"`
}

func newDigestCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "digest FILE",
		Short: "Print the content digest of a file",
		Args:  requireExactlyArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := digest.File(args[0])
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(cmd, digestOutput{File: args[0], Algorithm: digest.Algorithm, Digest: sum})
			}
			return writePlain(cmd, "%s\n", sum)
		},
	}
}

func newPathCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "path USER_ID",
		Short: "Print where a user's avatar is cached",
		Args:  requireExactlyArgs(1, "user id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			blobs, err := filestore.New(cfg.Avatar.StorageDir)
			if err != nil {
				return err
			}
			path, err := blobs.Path(args[0])
			if err != nil {
				return err
			}
			if *jsonOutput {
				return writeJSON(cmd, pathOutput{UserID: args[0], Path: path})
			}
			return writePlain(cmd, "%s\n", path)
		},
	}
}

func newVerifyCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "verify USER_ID",
		Short: "Recompute a cached avatar's digest and compare it with its record",
		Args:  requireExactlyArgs(1, "user id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAvatarService(cmd, cfg, func(svc avatarService) error {
				inspection, err := svc.Inspect(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := verifyOutput{
					UserID:         inspection.UserID,
					Path:           inspection.Path,
					BlobPresent:    inspection.BlobPresent,
					ExpectedDigest: inspection.ExpectedDigest,
					ActualDigest:   inspection.ActualDigest,
					Verified:       inspection.Verified(),
				}
				if *jsonOutput {
					if err := writeJSON(cmd, out); err != nil {
						return err
					}
				} else {
					_ = writePlain(cmd, "user_id: %s\n", out.UserID)
					_ = writePlain(cmd, "path: %s\n", out.Path)
					_ = writePlain(cmd, "blob_present: %t\n", out.BlobPresent)
					_ = writePlain(cmd, "expected: %s\n", out.ExpectedDigest)
					_ = writePlain(cmd, "actual: %s\n", out.ActualDigest)
					_ = writePlain(cmd, "verified: %t\n", out.Verified)
				}

				if !out.Verified {
					return errVerifyFailed
				}
				return nil
			})
		},
	}
}

func newDeleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete USER_ID",
		Short: "Remove a user's cached avatar and its record",
		Args:  requireExactlyArgs(1, "user id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAvatarService(cmd, cfg, func(svc avatarService) error {
				if err := svc.DeleteAvatar(cmd.Context(), args[0]); err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(cmd, deleteOutput{UserID: args[0], Deleted: true})
				}
				return writePlain(cmd, "deleted avatar for %s\n", args[0])
			})
		},
	}
}
