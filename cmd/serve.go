package cmd

import (
	"facegate.io/infrastructure"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification daemon",
	Run: func(cmd *cobra.Command, args []string) {
		infrastructure.StartServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
