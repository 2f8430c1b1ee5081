package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/biometric/types"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image>",
	Short: "Run one image through the verification pipeline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !runVerify(args[0]) {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func loadImage(path string) *types.Image {
	raw, err := os.ReadFile(path)
	if err != nil {
		die("could not read image", err)
	}
	img, err := biometric.DecodeImage(raw)
	if err != nil {
		die("could not decode image", err)
	}
	return img
}

func runVerify(path string) bool {
	teardown := initPipeline()
	defer teardown()

	img := loadImage(path)
	outcome, err := biometric.BiometricService.Verify(img)
	if err != nil && outcome == nil {
		die("verification failed", err)
	}

	encoded, _ := json.MarshalIndent(outcome, "", "  ")
	fmt.Println(string(encoded))
	return outcome.Decision == types.DecisionGranted
}
