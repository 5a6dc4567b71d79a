package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the photofeed CLI.
func NewRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "photofeed",
		Short:         "Social photo-sharing backend",
		Long:          "A social photo-sharing backend: accounts, friends and an image feed.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	cmd.AddCommand(NewServeCommand(&configPath))
	cmd.AddCommand(NewMigrateCommand(&configPath))

	return cmd
}
