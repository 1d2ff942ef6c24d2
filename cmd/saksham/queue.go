package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/cli"
	"github.com/spf13/cobra"
)

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the offline work queue",
	}

	cmd.AddCommand(queueListCmd())

	return cmd
}

func queueListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued items awaiting sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			q, err := initQueue()
			if err != nil {
				return err
			}
			defer func() { _ = q.Close() }()

			items, err := q.PeekAll(ctx)
			if err != nil {
				return err
			}

			if len(items) == 0 {
				fmt.Println(cli.FormatSuccess("Queue is empty"))
				return nil
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%d item(s) awaiting sync", len(items))))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tSTATUS\tRETRIES")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					item.ID,
					item.CreatedAt.Format("2006-01-02 15:04:05"),
					item.Status, item.RetryCount)
			}
			return w.Flush()
		},
	}
}
