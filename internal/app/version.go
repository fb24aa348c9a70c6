package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the camsort version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("camsort %s\n", Version)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
