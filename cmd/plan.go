package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oumajohn/vmhost-cli/internal/adapters/render/console"
	"github.com/oumajohn/vmhost-cli/internal/domain"
)

func newPlanCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage the subscription plan",
	}

	cmd.AddCommand(
		newPlanListCmd(app),
		newPlanSubscribeCmd(app),
	)

	return cmd
}

func newPlanListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the plan catalog with the active plan marked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := console.RenderPlans(app.tiers.CurrentPlan())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
}

func newPlanSubscribeCmd(app *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "subscribe <tier>",
		Short: "Switch to a different subscription plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := domain.ParseTier(args[0])
			if err != nil {
				return err
			}
			plan, err := domain.PlanByTier(tier)
			if err != nil {
				return err
			}

			transition, err := app.tiers.SelectPlan(plan)
			if err != nil {
				return err
			}

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "You are %s to the %s plan. Continue? [y/N]: ", transition, plan.Name)
				if !confirmed(cmd) {
					app.tiers.Cancel()
					fmt.Fprintln(cmd.OutOrStdout(), "Plan change cancelled.")
					return nil
				}
			}

			committed, err := app.tiers.Confirm(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Now on the %s plan.\n", committed.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

func confirmed(cmd *cobra.Command) bool {
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
