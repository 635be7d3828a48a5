package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/compiler"
	"github.com/vango-dev/reactor/pkg/reactivity"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Error output formats selected with --error-format.
const (
	formatAuto    = "auto"
	formatPretty  = "pretty"
	formatCompact = "compact"
	formatJSON    = "json"
)

// errorFormat is bound to the root command's --error-format flag.
var errorFormat = formatAuto

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err, errorFormat, term.IsTerminal(int(os.Stderr.Fd())))
		os.Exit(1)
	}
}

// reportError writes err to w in the given format. In auto mode a terminal
// gets the full colored report and anything else gets one compact line.
func reportError(w io.Writer, err error, format string, tty bool) {
	if format == formatAuto {
		format = formatCompact
		if tty {
			format = formatPretty
		}
	}
	switch format {
	case formatJSON:
		fmt.Fprintln(w, errors.FromError(err, "CLI002").FormatJSON())
	case formatPretty:
		errors.SetColors(tty)
		errors.Fprint(w, err)
	default:
		fmt.Fprintln(w, errors.FromError(err, "CLI002").FormatCompact())
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:   "reactor",
		Short: "Reactive components rendered in Go",
		Long: `reactor renders reactive components and templates.

Render templates to HTML, inspect the code the template compiler
generates, serve the demo app to browsers over a live websocket
session, or publish rendered snapshots to S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch errorFormat {
			case formatAuto, formatPretty, formatCompact, formatJSON:
			default:
				return errors.New("CLI001").
					WithDetailf("unknown error format %q", errorFormat).
					WithSuggestion("Use auto, pretty, compact or json")
			}
			compiler.Register()
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if debug {
				cfg.Debug = true
			}
			setupLogging(cfg.Debug)
			if cfg.Path() != "" {
				slog.Debug("config loaded", "path", cfg.Path())
			}
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to reactor.json (default: nearest project config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&errorFormat, "error-format", formatAuto, "Error output: auto, pretty, compact or json")

	rootCmd.AddCommand(
		renderCmd(),
		compileCmd(),
		serveCmd(),
		publishCmd(),
		initCmd(),
		errorsCmd(),
		versionCmd(),
	)
	return rootCmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadFromWorkingDir()
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
		reactivity.DebugMode = true
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s\n", fmt.Sprintf(format, args...))
}
