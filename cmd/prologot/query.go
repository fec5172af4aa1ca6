package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/prologot/cli"
)

var queryCmd = &cobra.Command{
	Use:   "query <goal> [files...]",
	Short: "Answer one goal and exit",
	Long: `Consults the given files, prints every answer to the goal and exits.
The exit status is 1 when the goal has no answer or raises an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, logger, err := startEngine(os.Stdout, args[1:])
		if logger != nil {
			defer logger.Sync() //nolint:errcheck
		}
		if err != nil {
			return err
		}
		defer eng.Cleanup()

		answers, err := eng.Solve(args[0])
		if err != nil {
			return err
		}
		for _, line := range cli.FormatAnswers(answers) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		if len(answers) == 0 {
			return errFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
