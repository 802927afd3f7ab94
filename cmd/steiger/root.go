// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/steigerlint/steiger/internal/report"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the flags of the root command. Persistent ones are
// shared with every subcommand.
type rootFlagValues struct {
	configPath     string
	verbose        bool
	concurrency    int
	watch          bool
	failOnWarnings bool
	format         string
	maxShown       int
	timeout        time.Duration
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "steiger [path]",
		Short: "Architecture linter for Feature-Sliced Design",
		Long: TitleStyle.Render("steiger") + SubtitleStyle.Render(" - Architecture linter for Feature-Sliced Design") + `

steiger checks that a source tree follows Feature-Sliced Design: layers,
slices and segments in the right places, public APIs in front of every
slice, and imports that only point down the layer stack.

` + SubtitleStyle.Render("Configuration:") + `
  steiger.config.cue, .toml, .yaml or .yml is looked up from the working
  directory upwards. STEIGER_* environment variables and a .env file
  override its settings; flags override both.

` + SubtitleStyle.Render("Exit codes:") + `
  0  no problems
  1  errors found, or warnings with --fail-on-warnings
  2  the lint could not run`,
		Example: `  steiger                       Lint ./src, or the working directory
  steiger ./app/src --watch     Re-lint on every change
  steiger --format json         Machine-readable report
  steiger explain public-api    Describe a rule`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, app, flags, args)
		},
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetIn(app.stdin)

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: steiger.config.* found from the working directory up)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().IntVar(&flags.concurrency, "concurrency", 0, "rules run at once (default from config, 0 means GOMAXPROCS)")

	rootCmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "re-run the linter when files change")
	rootCmd.Flags().BoolVar(&flags.failOnWarnings, "fail-on-warnings", false, "exit with code 1 when only warnings are found")
	rootCmd.Flags().StringVarP(&flags.format, "format", "f", string(report.FormatPretty),
		"report format ("+strings.Join(formatNames(), ", ")+")")
	rootCmd.Flags().IntVar(&flags.maxShown, "max-shown", 0, "diagnostics to show, 0 for all (default from config, 20)")
	rootCmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "abort a lint run after this long, 0 for no limit")

	rootCmd.AddCommand(
		newRulesCommand(app, flags),
		newExplainCommand(app, flags),
		newInspectCommand(app, flags),
		newConfigCommand(app, flags),
		newMCPCommand(app, flags),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI with the process streams and exits with the command's code.
// This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError prints errors fang surfaces, staying quiet for exit codes whose
// cause was already printed.
func handleError(w io.Writer, _ fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, false))
	if isUsageError(err) {
		fmt.Fprintf(w, "Try %s for usage.\n", CmdStyle.Render("--help"))
	}
}

// isUsageError recognizes cobra's argument and flag errors by their wording.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "invalid argument", "accepts ", "requires at least", "flag needs an argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func formatNames() []string {
	formats := report.Formats()
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
