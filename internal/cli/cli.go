// Package cli implements the textfill command-line interface.
//
// # Commands
//
//   - fit: fit every box of a .fit document and render it to PDF or SVG
//   - probe: fit a single ad-hoc string into a box of a given pixel size
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which includes
// every probe of the size search. Loggers are passed through context.Context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const appName = "textfill"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Build information, set via SetVersion from ldflags.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// SetVersion records build information shown by --version.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

func versionString() string {
	s := version
	if commit != "" {
		s += " (" + commit
		if date != "" {
			s += ", " + date
		}
		s += ")"
	}
	return s
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Fit text into fixed-size boxes by searching the largest font size",
		Long:         `textfill finds, for every text box of a document, the largest font size at which the text still fits the box, then renders the result to PDF or SVG.`,
		Version:      versionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.AddCommand(c.fitCommand())
	root.AddCommand(c.probeCommand())
	return root
}
