package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IsnaAyustin/final-project-ds/pkg/contracts"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "estatectl %s\n", contracts.GetFullVersionString())
			return nil
		},
	}
}
