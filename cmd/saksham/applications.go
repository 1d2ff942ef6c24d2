package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/cli"
	"github.com/spf13/cobra"
)

func applicationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "Browse benefit applications",
	}

	cmd.AddCommand(applicationsListCmd())
	cmd.AddCommand(applicationsShowCmd())

	return cmd
}

func applicationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List applications under review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			apps, err := p.controller.ListApplications(ctx)
			if err != nil {
				return err
			}

			if len(apps) == 0 {
				fmt.Println(cli.FormatWarning("No applications found"))
				return nil
			}

			fmt.Println(cli.FormatTitle("Applications"))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAPPLICANT\tSCHEME\tAMOUNT\tSTATUS")
			for _, app := range apps {
				status := string(app.Status())
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
					app.ID, app.ApplicantName, app.SchemeID, app.RequestedAmount,
					cli.StatusStyle(status).Render(status))
			}
			return w.Flush()
		},
	}
}

func applicationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <application-id>",
		Short: "Show one application with its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			app, err := p.controller.Application(ctx, args[0])
			if err != nil {
				return err
			}

			status := string(app.Status())
			fmt.Println(cli.FormatTitle(fmt.Sprintf("Application %s", app.ID)))
			fmt.Printf("Applicant:  %s (%s)\n", app.ApplicantName, app.ApplicantID)
			fmt.Printf("Scheme:     %s\n", app.SchemeID)
			fmt.Printf("Amount:     %.2f\n", app.RequestedAmount)
			fmt.Printf("Status:     %s\n", cli.StatusStyle(status).Render(status))
			fmt.Printf("Approvals:  ai=%t human=%t\n", app.AIApproved, app.HumanApproved)
			if app.Rejected {
				fmt.Printf("Reason:     %s\n", app.RejectionReason)
			}

			if len(app.Documents) > 0 {
				fmt.Println()
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DOCUMENT\tTYPE\tSTATUS\tREASON")
				for _, doc := range app.Documents {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						doc.ID, doc.Type,
						cli.StatusStyle(string(doc.Status)).Render(string(doc.Status)),
						doc.RejectionReason)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
