// Command gobamm builds, discretises and solves battery models.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/internal/logging"
)

// app carries what every subcommand shares.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: logging.NewNop()}
	root := &cobra.Command{
		Use:           "gobamm",
		Short:         "Battery model simulator",
		Long:          `gobamm discretises battery models by finite volumes or finite elements and integrates them in time.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
			if err != nil {
				return err
			}
			switch colorFlag {
			case "on":
				color.NoColor = false
			case "off":
				color.NoColor = true
			case "auto":
				color.NoColor = !isTerminal(stderr)
			default:
				return fmt.Errorf("%w: --color must be auto, on or off, got %q", gobamm.ErrConfiguration, colorFlag)
			}
			levelFlag, err := cmd.Root().PersistentFlags().GetString("log-level")
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(levelFlag)
			if err != nil {
				return fmt.Errorf("%w: %v", gobamm.ErrConfiguration, err)
			}
			a.logger = logging.NewWriter(stderr, level)
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(a.runCmd(), a.paramsCmd(), a.meshCmd(), a.serveCmd(), a.versionCmd())
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err and, on indented lines, each error it wraps.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(w, "  caused by: %v\n", cause)
	}
	var missing *gobamm.MissingParameterError
	if errors.As(err, &missing) {
		fmt.Fprintf(w, "  hint: add %q to the parameter file or [parameters].overrides\n", missing.Name)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
