package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/prologot/luabind"
)

var runCmd = &cobra.Command{
	Use:   "run <script.lua> [files...]",
	Short: "Run a sandboxed Lua script against the engine",
	Long: `Runs a Lua script with the global table "prolog" bound to an engine
started from --config. Prolog files after the script are consulted first.
The script may call prolog.initialize itself; the call is a no-op.`,
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

		rt := luabind.New(eng, os.Stdout)
		defer rt.Close()
		if err := rt.DoFile(args[0]); err != nil {
			return fmt.Errorf("lua: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
