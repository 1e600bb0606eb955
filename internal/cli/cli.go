// Package cli implements the counterseq command-line interface.
//
// This package provides commands for generating counterbalanced trial
// sequences, expanding experiment designs into trial blocks, visualizing
// de Bruijn graphs, and serving the HTTP API. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Draw a raw de Bruijn sequence for a k-symbol alphabet
//   - block: Expand a TOML design file into a trial block
//   - preview: Browse a generated block interactively
//   - graph: Render the underlying de Bruijn graph as DOT, SVG, or PNG
//   - serve: Run the HTTP API against a memory, Redis, or MongoDB store
//   - cache: Manage the rendered-diagram cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/seqlab/counterseq/pkg/buildinfo"
	"github.com/seqlab/counterseq/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "counterseq"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
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
		Use:          "counterseq",
		Short:        "Counterseq generates counterbalanced trial sequences",
		Long:         `Counterseq builds pseudorandom trial sequences in which every length-n run of conditions appears equally often, using randomized Eulerian circuits through de Bruijn graphs. It expands experiment designs into trial blocks, renders the underlying graphs, and serves studies over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.blockCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache opens the rendered-diagram cache, falling back to a null cache
// when caching is disabled or the directory cannot be resolved.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/counterseq/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
