package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger-external",
		Short: "Simulate a concurrent editor by committing a remote change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				res, err := a.store.TriggerExternalMutation(cmd.Context())
				if err != nil {
					return err
				}
				if !res.Committed {
					return fmt.Errorf("external mutation lost every race, latest version is %d", res.Plan.Version)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "external mutation committed version %d\n", res.Plan.Version)
				return nil
			})
		},
	}
}
