package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/exitcodes"
	ui "github.com/t3sl4/release-util/internal/ui"
)

// Version information - set via -ldflags during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// rootCmd wires the CLI surface using Cobra. Persistent flags feed the
// viper-backed config in newDeps(); subcommands implement the release
// queries and downloads.
var rootCmd = &cobra.Command{
	Use:           "release-util",
	Short:         "GitHub release client",
	Long:          "Query GitHub releases, resolve latest tags, and download release assets with progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch flagOutput {
		case ui.FormatText, ui.FormatJSON, ui.FormatYAML:
		default:
			return exitcodes.InvalidArgsErrorf("invalid --output: %s (use json|yaml|text)", flagOutput)
		}

		ui.InitGlobal(ui.Config{
			NoColor:        flagNoColor,
			NoEmoji:        flagNoEmoji,
			NonInteractive: flagNonInteractive,
			Verbose:        flagVerbose,
			Quiet:          flagQuiet,
			Debug:          flagDebug,
		})

		// Set NO_COLOR env so lipgloss and other libraries respect the flag
		if flagNoColor {
			os.Setenv("NO_COLOR", "1")
		}
		return nil
	},
}

var (
	flagOutput         string
	flagVerbose        bool
	flagQuiet          bool
	flagDebug          bool
	flagNoColor        bool
	flagNoEmoji        bool
	flagNonInteractive bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagOutput, "output", "o", "text", "Output format: json|yaml|text")
	pf.BoolVar(&flagVerbose, "verbose", false, "Verbose output")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Quiet mode: minimal output (suppresses extras)")
	pf.BoolVarP(&flagDebug, "debug", "d", false, "Debug output: log HTTP requests and downloads")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	pf.BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
	pf.BoolVar(&flagNonInteractive, "non-interactive", false, "Fail instead of prompting")

	// Read by config.Load through the command's flag set.
	pf.String("home", "", "Home directory for config, prefs and cache (default ~/.release-util)")
	pf.String("api-base", "", "GitHub API repos prefix (default https://api.github.com/repos)")
	pf.String("token", "", "GitHub token (default $GITHUB_TOKEN)")
	pf.Duration("timeout", 0, "Timeout for release metadata requests (default 30s)")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			fmt.Fprintln(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		// Help runs before PersistentPreRun, so manually configure colors
		c := ui.NewColorConfig()
		c.Enabled = c.Enabled && !flagNoColor
		fmt.Fprint(cmd.OutOrStdout(), rootHelp(c))
	})
}

// rootHelp renders grouped, example-rich help for the root command.
func rootHelp(c *ui.ColorConfig) string {
	type entry struct{ use, desc string }
	groups := []struct {
		title   string
		entries []entry
	}{
		{"Query", []entry{
			{"release OWNER REPO [TAG]", "Show release title, notes and assets"},
			{"latest OWNER REPO", "Print the latest release tag"},
			{"check OWNER REPO", "Compare a locally recorded version with the latest tag"},
			{"compare V1 V2", "Compare two version strings"},
		}},
		{"Download", []entry{
			{"download OWNER REPO", "Download release assets with progress"},
			{"fetch URL DEST", "Download a single URL to a file"},
		}},
		{"Local state", []entry{
			{"local get|set", "Read or record a local version"},
		}},
		{"Other", []entry{
			{"version", "Show version"},
			{"completion SHELL", "Generate shell completion"},
		}},
	}

	out := c.Header("release-util") + "  " + c.Description(rootCmd.Long) + "\n\n"
	for _, g := range groups {
		out += c.SubHeader(g.title) + "\n"
		for _, e := range g.entries {
			out += fmt.Sprintf("  %-28s %s\n", c.Apply(c.Theme.Value, e.use), c.Description(e.desc))
		}
		out += "\n"
	}
	out += c.SubHeader("Examples") + "\n"
	out += "  release-util release cli cli\n"
	out += "  release-util download cli cli --asset gh_2.40.0_linux_amd64.tar.gz --verify --extract\n"
	out += "  release-util latest cli cli --redirect\n\n"
	out += c.Description("Global flags: --output/-o, --home, --token, --api-base, --timeout, --quiet, --verbose, --debug, --no-color, --no-emoji") + "\n"
	out += c.Description("Run 'release-util <command> --help' for command flags.") + "\n"
	return out
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var se silentErr
		if !errors.As(err, &se) {
			c := ui.NewColorConfigFromGlobal()
			if flagNoColor {
				c.Enabled = false
			}
			ui.PrintError(os.Stderr, c, ui.ErrorFor(err))
		}
		exitcodes.Exit(exitcodes.CodeForError(err))
	}
}

// silentErr carries an exit code for a failure that was already reported.
type silentErr struct{ err error }

func (e silentErr) Error() string { return e.err.Error() }
func (e silentErr) Unwrap() error { return e.err }
