package main

import (
	"fmt"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/cli"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/gate"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session and pending sync work",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			provider, err := initIdentity(ctx)
			if err != nil {
				return err
			}

			session := gate.New(provider).ResolveSession(ctx)
			if session.Valid() {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Signed in as %s (%s)", session.Subject, session.Role)))
			} else {
				fmt.Println(cli.FormatWarning("Not signed in"))
			}

			q, err := initQueue()
			if err != nil {
				return err
			}
			defer func() { _ = q.Close() }()

			pending, err := q.PendingCount(ctx)
			if err != nil {
				return err
			}
			if pending > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("%s %d item(s) awaiting sync", cli.QueueIcon, pending)))
			} else {
				fmt.Println(cli.FormatSuccess("Offline queue is empty"))
			}

			return nil
		},
	}
}
