// ABOUTME: Root command definition and CLI setup
// ABOUTME: Handles the global config flag and shared client construction
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/zenoter/internal/bridge"
	"github.com/harper/zenoter/internal/config"
	"github.com/harper/zenoter/internal/logging"
)

// Version is set at build time.
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "zenoter",
	Short: "Local markdown notes",
	Long: `Zenoter keeps markdown notes in a local SQLite database.

Run "zenoter serve" to start the host, then use the other commands
(or "zenoter mcp") to work with notes through it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config.toml")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// clientLogger writes warnings to stderr only, so command output and the MCP
// stdio stream stay clean.
func clientLogger(stderr io.Writer) *zap.Logger {
	logger, err := logging.New(logging.Options{Level: "warn", Console: true, Stderr: stderr})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// withClient loads config, connects a bridge client, and runs fn with it.
func withClient(cmd *cobra.Command, fn func(c *bridge.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := bridge.NewClient(cfg.SocketPath, clientLogger(cmd.ErrOrStderr()))
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close connection: %v\n", closeErr)
		}
	}()

	return fn(client)
}
