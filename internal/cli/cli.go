// Package cli implements the waxrank command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/waxrank/waxrank/pkg/buildinfo"
	"github.com/waxrank/waxrank/pkg/discogs"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "waxrank"

	// defaultCacheFile is the cache document written in the working directory.
	defaultCacheFile = "discogs_cache.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

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
		Use:          "waxrank",
		Short:        "Waxrank ranks a Discogs collection by marketplace liquidity",
		Long:         `Waxrank enriches a Discogs collection with marketplace supply and community demand signals, scores each release with a deterministic liquidity heuristic, and writes a ranked CSV suggesting what to list for sale first.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.foldersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Client Factory
// =============================================================================

// newClient builds a Discogs client from resolved configuration.
func newClient(cfg *Config) (*discogs.Client, error) {
	return discogs.NewClient(cfg.Token,
		discogs.WithCurrency(cfg.Currency),
		discogs.WithUserAgent(buildinfo.UserAgent()),
	)
}
