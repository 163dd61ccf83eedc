package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage configuration settings for hubfix.

Values come from the config file, HUBFIX_* environment variables, and
command-line flags, in increasing order of precedence.`,
	}

	configCmd.AddCommand(NewConfigShowCommand(container))
	configCmd.AddCommand(NewConfigPathCommand(container))
	configCmd.AddCommand(NewConfigInitCommand(container))

	return configCmd
}

// ConfigShowFlags holds command-line flags for the config show subcommand
type ConfigShowFlags struct {
	Output string
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	flags := &ConfigShowFlags{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			display := *container.Config
			display.Hub.Token = maskToken(display.Hub.Token)

			if handled, err := writeStructured(cmd, flags.Output, &display); handled {
				return err
			}

			printConfig(cmd, &display)
			return nil
		},
	}

	addOutputFlag(cmd, &flags.Output)
	return cmd
}

func printConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintf(out, "Cache Dir: %s\n", orDefault(cfg.Cache.Dir, "(hub default)"))
	fmt.Fprintf(out, "Hub URL: %s\n", cfg.Hub.BaseURL)
	fmt.Fprintf(out, "Hub Token: %s\n", cfg.Hub.Token)
	fmt.Fprintf(out, "Hub Timeout: %s\n", cfg.Hub.Timeout)
	fmt.Fprintf(out, "Patch File: %s\n", cfg.Patch.File)
	fmt.Fprintf(out, "Patch Field: %s\n", cfg.Patch.Field)
	fmt.Fprintf(out, "Patch Value: %s\n", cfg.Patch.Value)
	fmt.Fprintf(out, "Server Config Dir: %s\n", cfg.Server.ConfigDir)
	fmt.Fprintf(out, "Log Level: %s\n", cfg.Logger.Level)
	fmt.Fprintf(out, "Log Format: %s\n", cfg.Logger.Format)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// maskToken masks the hub token for display
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file path: %s\n", container.ConfigPath)
			return nil
		},
	}
}

// NewConfigInitCommand creates the init subcommand
func NewConfigInitCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(container.Config, container.ConfigPath); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", container.ConfigPath)
			return nil
		},
	}
}
