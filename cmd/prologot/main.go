// Prologot runs Prolog goals from a REPL, a terminal UI, the command line
// or sandboxed Lua scripts.
//
// Usage: prologot [--config file] [--plain] [--script file] [files...]
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/prologot/cli"
	"github.com/nathoo/prologot/config"
	"github.com/nathoo/prologot/engine"
	"github.com/nathoo/prologot/logging"
	"github.com/nathoo/prologot/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const historyFile = ".prologot_history"

// errFailed makes the process exit 1 without printing anything more. The
// failing goal has already been reported.
var errFailed = errors.New("failed")

var (
	configFile string
	verbose    bool
	quietLog   bool
	plain      bool
	scriptFile string
)

var rootCmd = &cobra.Command{
	Use:           "prologot [files...]",
	Short:         "Interactive Prolog over an embedded engine",
	Long:          `Consults the given Prolog files, then reads goals and /commands in a REPL.`,
	Args:          cobra.ArbitraryArgs,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRepl,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML file with startup options")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every goal at debug level")
	rootCmd.PersistentFlags().BoolVarP(&quietLog, "quiet", "q", false, "Log errors only")

	rootCmd.Flags().BoolVar(&plain, "plain", false, "Use the line REPL even on a terminal")
	rootCmd.Flags().StringVar(&scriptFile, "script", "", "Replay REPL lines from a file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// startEngine builds the logger, initialises an engine from --config and
// consults files in order.
func startEngine(out io.Writer, files []string) (*engine.Engine, *zap.Logger, error) {
	logger, err := logging.New(verbose, quietLog)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			return nil, logger, err
		}
	}

	eng := engine.New(engine.WithLogger(logger), engine.WithOutput(out))
	if !eng.InitializeConfig(cfg) {
		return nil, logger, fmt.Errorf("starting engine: %s", eng.LastError())
	}
	for _, f := range files {
		if !eng.ConsultFile(f) {
			eng.Cleanup()
			return nil, logger, fmt.Errorf("consulting %s: %s", f, eng.LastError())
		}
	}
	return eng, logger, nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	// The TUI needs goal output captured; the line REPLs write it straight
	// through.
	useTUI := scriptFile == "" && !plain && isTerminal()
	var out io.Writer = os.Stdout
	captured := new(bytes.Buffer)
	if useTUI {
		out = captured
	}

	eng, logger, err := startEngine(out, args)
	if logger != nil {
		defer logger.Sync() //nolint:errcheck
	}
	if err != nil {
		return err
	}
	defer eng.Cleanup()

	s := cli.NewSession(eng)

	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c := cli.New(s)
		c.In = f
		c.EchoInput = true
		if !c.Run() {
			return errFailed
		}
		return nil
	}

	if !useTUI {
		c := cli.New(s)
		if isTerminal() {
			home, _ := os.UserHomeDir()
			c.Interactive(filepath.Join(home, historyFile))
		} else {
			c.Run()
		}
		return nil
	}

	s.Captured = captured
	return tui.Run(s)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
