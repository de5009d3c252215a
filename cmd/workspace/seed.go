package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the seed floor plan and user directory to the backend",
		Long: "Without --force the seed is written only when the backend is empty. " +
			"With --force the seed layout replaces the stored plan as the next version.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				users, err := a.directory()
				if err != nil {
					return err
				}
				accounts, err := users.List(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "directory holds %d users\n", len(accounts))

				latest, err := a.store.Fetch(ctx)
				if err != nil {
					return err
				}
				if !force {
					fmt.Fprintf(out, "floor plan at version %d\n", latest.Version)
					return nil
				}

				now := time.Now()
				candidate := a.seed(now)
				candidate.ID = latest.ID
				candidate.Touch(latest.Version+1, now)
				res, err := a.store.Commit(ctx, candidate)
				if err != nil {
					return err
				}
				if !res.Committed {
					return fmt.Errorf("seed lost a race with a concurrent commit, latest version is %d", res.Plan.Version)
				}
				fmt.Fprintf(out, "seed committed as version %d\n", res.Plan.Version)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace the stored plan with the seed layout")
	return cmd
}
