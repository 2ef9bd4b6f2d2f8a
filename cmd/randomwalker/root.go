package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for randomwalker.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "randomwalker",
		Short: "Take a random walk across the web",
		Long: `randomwalker starts from a web page and repeatedly follows a randomly
chosen outbound link. Every destination is fetched, checked by a safety
filter and sanitized before it is shown.

Pages without usable links make the walk step back and try again from the
previous page; a destination the safety filter refuses stops the walk.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewWalkCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
