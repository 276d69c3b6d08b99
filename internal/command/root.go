// Package command implements the agenthub CLI.
package command

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agenthub",
		Short:         "AgentHub - configurable chat agents over LLM providers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = Version
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.AddCommand(
		NewServeCmd(),
		NewMigrateCmd(),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
