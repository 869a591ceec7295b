package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"forrealscan/api/internal/verdict"
)

var normalizeFlags struct {
	explain bool
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize a raw model completion (file or stdin) into a verdict record",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeFlags.explain, "explain", false, "Print the absorbed failure, if any, to stderr")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	var (
		raw []byte
		err error
	)
	if len(args) == 1 && args[0] != "-" {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read completion: %w", err)
	}

	rec, failure := verdict.Run(verdict.Completion{Text: string(raw)})
	if normalizeFlags.explain {
		if failure != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "fallback: %s: %s\n", failure.Kind(), failure.Reason())
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "fallback: none")
		}
	}
	return printRecord(cmd.OutOrStdout(), rec)
}

func printRecord(w io.Writer, rec verdict.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
