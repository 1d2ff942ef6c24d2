package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/cli"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/spf13/cobra"
)

func documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Review uploaded documents",
	}

	cmd.AddCommand(documentsCheckCmd())
	cmd.AddCommand(documentsTransitionCmd("verify", model.DocVerified, "Mark a document as verified"))
	cmd.AddCommand(documentsRejectCmd())
	cmd.AddCommand(documentsTransitionCmd("reopen", model.DocAttention, "Return a document to the attention state"))

	return cmd
}

func documentsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <application-id>",
		Short: "List the documents of an application for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			docs, err := p.controller.CheckDocuments(ctx, args[0])
			if err != nil {
				return err
			}

			if len(docs) == 0 {
				fmt.Println(cli.FormatWarning("No documents uploaded"))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tLAST REVIEWED BY\tREASON")
			for _, doc := range docs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					doc.ID, doc.Type,
					cli.StatusStyle(string(doc.Status)).Render(string(doc.Status)),
					doc.LastModifiedBy, doc.RejectionReason)
			}
			return w.Flush()
		},
	}
}

func documentsTransitionCmd(use string, target model.DocumentStatus, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <document-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			doc, err := p.controller.TransitionDocument(ctx, args[0], target, "")
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Document %s is now %s", doc.ID, doc.Status)))
			return nil
		},
	}
}

func documentsRejectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <document-id>",
		Short: "Reject a document with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reason, _ := cmd.Flags().GetString("reason")

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			doc, err := p.controller.TransitionDocument(ctx, args[0], model.DocRejected, reason)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Document %s rejected: %s", doc.ID, doc.RejectionReason)))
			return nil
		},
	}

	cmd.Flags().String("reason", "", "why the document is rejected (required)")

	return cmd
}
