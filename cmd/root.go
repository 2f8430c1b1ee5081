package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"facegate.io/application/repository"
	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/database"
	"facegate.io/infrastructure/logger"
	"github.com/spf13/cobra"
)

// Version is the application version.
const Version = "0.1.0"

var (
	manifestPath string
	storeBackend string
)

var rootCmd = &cobra.Command{
	Use:     "facegate",
	Short:   "On-device face verification for door access",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if manifestPath != "" {
			os.Setenv("FACEGATE_MODEL_MANIFEST", manifestPath)
		}
		if storeBackend != "" {
			os.Setenv("FACEGATE_STORE", storeBackend)
		}
	},
	// Containers run the image with no arguments and expect the daemon.
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "Path to the model manifest (default: models/manifest.yaml)")
	rootCmd.PersistentFlags().StringVarP(&storeBackend, "store", "s", "", "Embedding store backend: sqlite, mongo or memory")
}

// initPipeline boots the verification stack for one-shot commands. The
// returned teardown flushes the database and unloads the models.
func initPipeline() func() {
	logger.InitializeLogger()
	database.SetUpDatabase()
	biometric.InitialiseBiometricService(repository.EmbeddingStore())
	return func() {
		biometric.BiometricService.Close()
		database.CleanUpDatabase()
	}
}

func die(message string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
	} else {
		fmt.Fprintln(os.Stderr, message)
	}
	os.Exit(1)
}
