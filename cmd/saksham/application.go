package main

import (
	"errors"
	"fmt"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/cli"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/spf13/cobra"
)

func applicationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "application",
		Short: "Decide on an application",
	}

	cmd.AddCommand(applicationApproveCmd())
	cmd.AddCommand(applicationRejectCmd())

	return cmd
}

func applicationApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <application-id>",
		Short: "Record reviewer approval for an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			app, err := p.controller.ApproveApplication(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Application %s approved", app.ID)))
			if unverified := app.UnverifiedDocuments(); len(unverified) > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("%d document(s) are not verified yet", len(unverified))))
			}
			return nil
		},
	}
}

func applicationRejectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <application-id>",
		Short: "Reject an application with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reason, _ := cmd.Flags().GetString("reason")

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			app, err := p.controller.RejectApplication(ctx, args[0], reason)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Application %s rejected", app.ID)))
			return nil
		},
	}

	cmd.Flags().String("reason", "", "why the application is rejected (required)")

	return cmd
}

func releaseFundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release-funds <application-id>",
		Short: "Release funds for a dually approved application (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			app, err := p.controller.ReleaseFunds(ctx, args[0])
			if errors.Is(err, common.ErrUnauthorized) {
				return common.NewUserError("Only an administrator can release funds", err)
			}
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Funds released for application %s", app.ID)))
			return nil
		},
	}
}
