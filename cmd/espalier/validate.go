package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest for consistency",
	Long:  `Parses the manifest and reports dangling layout references, unknown presets, malformed capability rules and unresolvable palette tokens.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Manifest is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("manifest")
	if len(args) > 0 {
		path = args[0]
	}

	manifest, err := config.Load(path)
	if err != nil {
		return err
	}
	return manifest.Validate()
}
