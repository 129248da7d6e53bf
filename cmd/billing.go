package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oumajohn/vmhost-cli/internal/adapters/render/console"
	"github.com/oumajohn/vmhost-cli/internal/domain"
)

func newBillingCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "View and settle backup bills",
	}

	cmd.AddCommand(
		newBillingListCmd(app),
		newBillingPayCmd(app),
	)

	return cmd
}

func newBillingListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List outstanding bills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var bills []domain.Bill
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching billing information...", func(ctx context.Context) error {
				var fetchErr error
				bills, fetchErr = app.billing.Refresh(ctx)
				return fetchErr
			})
			if err != nil {
				return err
			}

			rendered, err := console.RenderBills(bills)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}

func newBillingPayCmd(app *app) *cobra.Command {
	var billID string
	var card string

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Pay an outstanding bill with a card",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.billing.Refresh(cmd.Context()); err != nil {
				return err
			}

			paid, err := app.billing.SubmitPayment(cmd.Context(), domain.BillID(billID), card)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Bill %s paid, transaction %s\n", paid.ID, paid.TransactionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&billID, "bill", "", "bill id")
	cmd.Flags().StringVar(&card, "card", "", "card number")
	_ = cmd.MarkFlagRequired("bill")
	_ = cmd.MarkFlagRequired("card")

	return cmd
}

func newBackupCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create VM backups",
	}

	cmd.AddCommand(newBackupCreateCmd(app))

	return cmd
}

func newBackupCreateCmd(app *app) *cobra.Command {
	var vmID int64
	var sizeMB int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Back up a VM's pending data and bill the backup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Backup of %d MB bills %d.\n", sizeMB, domain.CalculateBackupBill(sizeMB))

			bill, err := app.billing.CreateBackup(cmd.Context(), domain.VMID(vmID), sizeMB)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup created, bill %s pending for %d.\n", bill.ID, bill.Amount)
			return nil
		},
	}

	cmd.Flags().Int64Var(&vmID, "vm", 0, "virtual machine id")
	cmd.Flags().Int64Var(&sizeMB, "size", 0, "backup size in MB")
	_ = cmd.MarkFlagRequired("vm")
	_ = cmd.MarkFlagRequired("size")

	return cmd
}
