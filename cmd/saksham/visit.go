package main

import (
	"fmt"
	"time"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/cli"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/model"
	"github.com/spf13/cobra"
)

func visitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visit",
		Short: "Record field visits",
	}

	cmd.AddCommand(visitCaptureCmd())

	return cmd
}

func visitCaptureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture <application-id> <photo-url>",
		Short: "Queue a field-visit photo for the next sync",
		Long: `Record a photo taken during a field visit. The record is appended to the
durable offline queue and applied to the review store on the next sync;
the command returns as soon as the record is safely on disk.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			caption, _ := cmd.Flags().GetString("caption")

			p, err := initPortal(ctx, nil)
			if err != nil {
				return err
			}
			defer p.close()

			item, err := p.controller.EnqueueFieldPhoto(ctx, model.FieldVisit{
				ApplicationID: args[0],
				PhotoURL:      args[1],
				Caption:       caption,
				CapturedAt:    time.Now(),
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Field photo queued (%s %s)", cli.QueueIcon, item.ID)))
			return nil
		},
	}

	cmd.Flags().String("caption", "", "optional caption for the photo")

	return cmd
}
