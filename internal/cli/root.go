// Package cli provides the command-line interface for madgresso.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/madgresso/madgresso/internal/cli/commands"
	"github.com/madgresso/madgresso/internal/cli/plugins"
	"github.com/madgresso/madgresso/pkg/config"
	"github.com/madgresso/madgresso/pkg/logger"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	// Check if the first argument might be a plugin command
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					return plugins.Execute(pluginPath, os.Args[2:])
				}
				// Plugin not found - will fall through to Cobra which will show error
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		if len(os.Args) > 1 {
			potentialCommand := os.Args[1]
			if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
				if !isBuiltinCommand(rootCmd, potentialCommand) {
					_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
					return 2
				}
			}
		}
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "madgresso",
		Short: "Fill in web expense claims from plain-text claim files",
		Long: `madgresso reads expense claims written as plain text, one item per line,
and submits them to a web expenses form through a form driver.

Claim file lines:
  type; date; [CUR] amount; description
  type; date; CUR amount; account; description
  type; date; CUR amount; account; subproject; description
  Receipts: <glob>   Project: <subproject>   Month: <month year>   Comment: <text>
  # comment

Credentials and defaults come from the configuration file (-c) and may be
overridden with MADGRESSO_* environment variables or a .env file.

PLUGINS:
  Binaries named madgresso-<command> are run for unknown commands, and form
  drivers are binaries named madgresso-driver-<name>. Both are searched for in:
    1. Same directory as the madgresso binary
    2. ~/.madgresso/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, g)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigPath, "config", "c", config.DefaultPath(), "Configuration file")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&g.LogFormat, "log-format", "console", "Log format (console|json)")

	rootCmd.AddCommand(commands.NewSubmitCommand(g))
	rootCmd.AddCommand(commands.NewCheckCommand(g))
	rootCmd.AddCommand(commands.NewTypesCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

// setup loads .env and puts the logger in the command context.
func setup(cmd *cobra.Command, g *commands.GlobalOptions) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	level, err := zerolog.ParseLevel(g.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", g.LogLevel, err)
	}

	var log zerolog.Logger
	switch g.LogFormat {
	case "console", "":
		log = logger.NewConsole(cmd.ErrOrStderr(), level)
	case "json":
		log = logger.NewWithWriter(cmd.ErrOrStderr()).Level(level)
	default:
		return fmt.Errorf("invalid --log-format %q (must be console or json)", g.LogFormat)
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}
