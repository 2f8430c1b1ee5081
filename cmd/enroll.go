package cmd

import (
	"fmt"
	"os"

	"facegate.io/infrastructure/biometric"
	"facegate.io/infrastructure/biometric/types"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollName string

var enrollCmd = &cobra.Command{
	Use:   "enroll <image> [image...]",
	Short: "Enroll one identity from one or more captures",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !runEnroll(enrollName, args) {
			os.Exit(1)
		}
	},
}

func init() {
	enrollCmd.Flags().StringVarP(&enrollName, "name", "n", "", "Identity display name")
	enrollCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(enrollCmd)
}

func runEnroll(name string, paths []string) bool {
	teardown := initPipeline()
	defer teardown()

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription(fmt.Sprintf("Enrolling %s", name)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	enrolled := 0
	failures := []string{}
	for _, path := range paths {
		img := loadImage(path)
		result, err := biometric.BiometricService.Enroll(name, img)
		bar.Add(1)
		if err != nil {
			if existing, ok := types.IsAlreadyEnrolled(err); ok {
				failures = append(failures, fmt.Sprintf("%s: face already enrolled as %q", path, existing))
				continue
			}
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		enrolled++
		name = result.Name
	}
	fmt.Fprintln(os.Stderr)

	for _, failure := range failures {
		fmt.Fprintln(os.Stderr, failure)
	}
	fmt.Printf("Enrolled %d of %d captures for %q\n", enrolled, len(paths), name)
	return enrolled > 0
}
