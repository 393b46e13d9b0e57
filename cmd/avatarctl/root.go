package main

import (
	"github.com/spf13/cobra"

	"github.com/lorrc/user-registry/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "avatarctl",
		Short:         "Inspect and manage cached user avatars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newDigestCmd(&jsonOutput),
		newPathCmd(cfg, &jsonOutput),
		newVerifyCmd(cfg, &jsonOutput),
		newDeleteCmd(cfg, &jsonOutput),
	)

	return cmd
}
