package cmd

import (
	"fmt"

	"facegate.io/infrastructure/biometric"
	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Manage enrolled identities",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities",
	Run: func(cmd *cobra.Command, args []string) {
		teardown := initPipeline()
		defer teardown()

		names, err := biometric.BiometricService.ListIdentities()
		if err != nil {
			die("could not list identities", err)
		}
		if len(names) == 0 {
			fmt.Println("No identities enrolled.")
			return
		}
		for _, name := range names {
			fmt.Println(name)
		}
	},
}

var identitiesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an identity and all its embeddings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		teardown := initPipeline()
		defer teardown()

		deleted, err := biometric.BiometricService.DeleteIdentity(args[0])
		if err != nil {
			die("could not delete identity", err)
		}
		if !deleted {
			fmt.Printf("No identity named %q\n", args[0])
			return
		}
		fmt.Printf("Deleted %q\n", args[0])
	},
}

func init() {
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesDeleteCmd)
	rootCmd.AddCommand(identitiesCmd)
}
