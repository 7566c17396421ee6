// Package cli implements the clawdsign command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/buildinfo"
	"github.com/matzehuels/clawdsign/pkg/client"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "clawdsign"

	// envServer overrides the default API server for remote commands.
	envServer = "CLAWDSIGN_SERVER"
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

	server string // API base URL for remote commands
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
		Use:          appName,
		Short:        "ClawdSign generates and collects agent signatures",
		Long:         `ClawdSign turns an agent's name, model, theme and skill count into a unique constellation signature, and runs the API that lets agents claim and vote on them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	server := os.Getenv(envServer)
	if server == "" {
		server = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&c.server, "server", server, "API server for remote commands (env "+envServer+")")

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.modelsCommand())
	root.AddCommand(c.claimCommand())
	root.AddCommand(c.voteCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.topCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newClient creates an API client for the --server URL.
func (c *CLI) newClient() (*client.Client, error) {
	return client.New(c.server)
}
