package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
)

func writeJSON(cmd *cobra.Command, payload any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(cmd *cobra.Command, format string, args ...any) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	return err
}

func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}
	switch {
	case errors.Is(err, errVerifyFailed):
		lines = append(lines, "hint: the cached blob no longer matches its recorded digest; run `avatarctl delete` to let the next request download it again.")
	case errors.Is(err, apperrors.ErrAvatarNotFound):
		lines = append(lines, "hint: no avatar has been acquired for this user yet.")
	case errors.Is(err, apperrors.ErrInvalidUserID):
		lines = append(lines, "hint: user ids may only contain letters, digits, '-' and '_'.")
	}
	return lines
}
