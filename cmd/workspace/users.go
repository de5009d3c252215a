package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/workspace-planner/internal/directory"
)

func newUsersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage directory accounts",
	}
	users.AddCommand(newUsersAddCmd(), newUsersListCmd(), newUsersShowCmd())
	return users
}

func newUsersAddCmd() *cobra.Command {
	var input directory.SeedUser
	var role string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input.Role = directory.Role(role)
			return withApp(cmd, func(a *app) error {
				users, err := a.directory()
				if err != nil {
					return err
				}
				user, err := users.Register(cmd.Context(), input)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.ID, user.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email, also the login and user id")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(directory.RoleEmployee), "ADMIN or EMPLOYEE")
	for _, name := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				users, err := a.directory()
				if err != nil {
					return err
				}
				all, err := users.List(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tROLE")
				for _, u := range all {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.Role)
				}
				return tw.Flush()
			})
		},
	}
}

func newUsersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				users, err := a.directory()
				if err != nil {
					return err
				}
				user, err := users.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "id: %s\nname: %s\nemail: %s\nrole: %s\n", user.ID, user.Name, user.Email, user.Role)
				return nil
			})
		},
	}
}
