// Package cli implements the shopbot command line using cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

// NewRootCommand builds the shopbot command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "shopbot",
		Short:         "Online shop assistant with order tools and an equation solver",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML settings file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	root.AddCommand(newChatCommand(flags))
	root.AddCommand(newServeCommand(flags))
	root.AddCommand(newSolveCommand())
	root.AddCommand(newLinearCommand())
	root.AddCommand(newToolsCommand())

	return root
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
