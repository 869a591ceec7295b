// scanctl is the operator CLI: normalize a raw completion or analyze a local image.
//
// Usage:
//
//	scanctl normalize [file] [--explain]
//	scanctl analyze <image> [--llm gpt|gemini|stub] [--mode quick|standard|forensic] [--timeout 2m]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "scanctl",
	Short:         "Inspect and run AI-image verdicts",
	Long:          "scanctl runs the verdict normalizer over raw model output, or a full\nscan of a local image against a configured engine.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
