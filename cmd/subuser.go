package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oumajohn/vmhost-cli/internal/adapters/render/console"
	"github.com/oumajohn/vmhost-cli/internal/domain"
)

func newSubUserCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subuser",
		Short: "Manage sub-users and their VM delegations",
	}

	cmd.AddCommand(
		newSubUserListCmd(app),
		newSubUserCreateCmd(app),
		newSubUserAssignCmd(app),
		newSubUserReleaseCmd(app),
	)

	return cmd
}

func newSubUserListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sub-users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var subUsers []domain.SubUser
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching sub-users...", func(ctx context.Context) error {
				var fetchErr error
				subUsers, fetchErr = app.subUsers.Refresh(ctx)
				return fetchErr
			})
			if err != nil {
				return err
			}

			rendered, err := console.RenderSubUsers(subUsers)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}

func newSubUserCreateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <username>",
		Short: "Create a sub-user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.subUsers.Refresh(cmd.Context()); err != nil {
				return err
			}
			created, err := app.subUsers.CreateSubUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created sub-user %s\n", created.Username)
			return nil
		},
	}
}

func newSubUserAssignCmd(app *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Delegate one more VM to a sub-user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.subUsers.Refresh(cmd.Context()); err != nil {
				return err
			}
			updated, err := app.subUsers.AssignVM(cmd.Context(), domain.SubUserID(id))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d/%d VMs\n", updated.Username, updated.AssignedVMCount, domain.MaxVMsPerSubUser)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "sub-user id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func newSubUserReleaseCmd(app *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Take one VM back from a sub-user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.subUsers.Refresh(cmd.Context()); err != nil {
				return err
			}
			updated, err := app.subUsers.ReleaseVM(cmd.Context(), domain.SubUserID(id))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d/%d VMs\n", updated.Username, updated.AssignedVMCount, domain.MaxVMsPerSubUser)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "sub-user id")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
