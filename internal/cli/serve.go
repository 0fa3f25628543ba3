// ABOUTME: Serve command that runs the host process
// ABOUTME: Owns the database and answers bridge clients until told to stop
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/zenoter/internal/app"
	"github.com/harper/zenoter/internal/logging"
)

var (
	serveQuitWhenIdle bool
	serveVerbose      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the zenoter host",
	Long: `Open the notes database and serve it to other zenoter commands over a
local socket. Stops on SIGINT/SIGTERM, or when the last client disconnects
if quit_when_idle is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("quit-when-idle") {
			cfg.QuitWhenIdle = serveQuitWhenIdle
		}

		level := cfg.LogLevel
		if serveVerbose {
			level = "debug"
		}
		logger, err := logging.New(logging.Options{
			File:    cfg.LogFile,
			Level:   level,
			Console: true,
			Stderr:  cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		host := app.NewHost(cfg, logger)
		defer func() {
			if err := host.Shutdown(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: shutdown: %v\n", err)
			}
		}()

		if err := host.Start(ctx); err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "zenoter serving %s\n", cfg.DBPath)
		return host.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveQuitWhenIdle, "quit-when-idle", false, "Exit when the last client disconnects")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Log at debug level")
	rootCmd.AddCommand(serveCmd)
}
