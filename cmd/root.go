package cmd

import "github.com/spf13/cobra"

func Execute() error {
	root, app := newRootCmd()
	defer func() {
		if app != nil {
			app.close()
		}
	}()
	return root.Execute()
}

func newRootCmd() (*cobra.Command, *app) {
	rootCmd := &cobra.Command{
		Use:           "vmc",
		Short:         "VM hosting console: manage machines, sub-users, plans and billing",
		Long:          "vmc is a terminal console for the VM hosting service: list and edit virtual machines, reassign ownership, delegate VMs to sub-users, switch subscription plans, and settle backup bills.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd, nil
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newSessionCmd(app),
		newVMCmd(app),
		newSubUserCmd(app),
		newPlanCmd(app),
		newBillingCmd(app),
		newBackupCmd(app),
	)

	return rootCmd, app
}
