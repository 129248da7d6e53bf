package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oumajohn/vmhost-cli/internal/adapters/render/console"
	"github.com/oumajohn/vmhost-cli/internal/application"
	"github.com/oumajohn/vmhost-cli/internal/domain"
	"github.com/oumajohn/vmhost-cli/internal/ports"
)

func newVMCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vm",
		Short: "Manage virtual machines",
	}

	cmd.AddCommand(
		newVMListCmd(app),
		newVMCreateCmd(app),
		newVMEditCmd(app),
		newVMDeleteCmd(app),
		newVMAssignCmd(app),
	)

	return cmd
}

func newVMListCmd(app *app) *cobra.Command {
	var page int
	var pageSize int
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List virtual machines",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fetched ports.VMPage
			fetchErr := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching virtual machines...", func(ctx context.Context) error {
				var err error
				fetched, err = app.store.FetchPage(ctx, page, pageSize)
				return err
			})
			if fetchErr != nil {
				if len(fetched.Items) == 0 {
					return fetchErr
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (showing cached view)\n", fetchErr)
			}

			if search != "" {
				fetched = ports.VMPage{Items: app.store.Search(search), Total: app.store.Total()}
			}

			rendered, err := console.RenderVMPage(fetched, page, pageSize)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "machines per page")
	cmd.Flags().StringVar(&search, "search", "", "filter the loaded machines by name or owner")

	return cmd
}

func newVMCreateCmd(app *app) *cobra.Command {
	var command application.CreateVMCommand
	var status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a virtual machine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			command.Status = domain.VMStatus(status)
			created, err := app.store.Create(cmd.Context(), command)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (#%d)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&command.Name, "name", "", "machine name")
	cmd.Flags().IntVar(&command.CPU, "cpu", 2, "vCPU count")
	cmd.Flags().IntVar(&command.RAMMB, "ram", 4096, "RAM in MB")
	cmd.Flags().Int64Var(&command.CostPerMonth, "cost", 0, "monthly cost")
	cmd.Flags().StringVar(&status, "status", string(domain.VMStatusRunning), "initial status (running or stopped)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newVMEditCmd(app *app) *cobra.Command {
	var command application.UpdateVMCommand
	var status string

	cmd := &cobra.Command{
		Use:   "edit <vm-id>",
		Short: "Edit a virtual machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVMID(args[0])
			if err != nil {
				return err
			}

			command.Status = domain.VMStatus(status)
			updated, err := app.store.Update(cmd.Context(), id, command)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (#%d)\n", updated.Name, updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&command.Name, "name", "", "machine name")
	cmd.Flags().IntVar(&command.CPU, "cpu", 2, "vCPU count")
	cmd.Flags().IntVar(&command.RAMMB, "ram", 4096, "RAM in MB")
	cmd.Flags().Int64Var(&command.CostPerMonth, "cost", 0, "monthly cost")
	cmd.Flags().StringVar(&status, "status", string(domain.VMStatusRunning), "status (running or stopped)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newVMDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <vm-id>",
		Short: "Delete a virtual machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVMID(args[0])
			if err != nil {
				return err
			}
			return app.store.Delete(cmd.Context(), id)
		},
	}
}

func newVMAssignCmd(app *app) *cobra.Command {
	var vmID int64
	var owner string

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Reassign a virtual machine to another user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.transfer.Assign(cmd.Context(), domain.VMID(vmID), owner)
		},
	}

	cmd.Flags().Int64Var(&vmID, "vm", 0, "virtual machine id")
	cmd.Flags().StringVar(&owner, "owner", "", "new owner id")
	_ = cmd.MarkFlagRequired("vm")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func parseVMID(raw string) (domain.VMID, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid vm id %q", domain.ErrValidation, raw)
	}
	return domain.VMID(id), nil
}
