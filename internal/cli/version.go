package cli

import (
	"github.com/spf13/cobra"

	"wallet-credit-score/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	// build info needs no config; skip the root's App setup
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write([]byte(version.Current().String()))
		return err
	},
}
