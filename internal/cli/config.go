// ABOUTME: Config and version commands
// ABOUTME: Writes a starter config.toml and prints the build version
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/zenoter/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage zenoter configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
		}

		if err := config.Write(configPath, config.Default()); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "config:         %s\n", configPath)
		fmt.Fprintf(w, "db_path:        %s\n", cfg.DBPath)
		fmt.Fprintf(w, "socket_path:    %s\n", cfg.SocketPath)
		fmt.Fprintf(w, "log_file:       %s\n", cfg.LogFile)
		fmt.Fprintf(w, "log_level:      %s\n", cfg.LogLevel)
		fmt.Fprintf(w, "quit_when_idle: %t\n", cfg.QuitWhenIdle)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the zenoter version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zenoter %s\n", Version)
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing config")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd, versionCmd)
}
