package main

import (
	"fmt"

	"github.com/Sai-Pat/Saksham-Web-sub000/internal/cli"
	"github.com/Sai-Pat/Saksham-Web-sub000/internal/common"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Drain the offline queue against the review store",
		Long: `Apply every queued field action in order. Items that apply cleanly are
removed; a connectivity failure stops the drain and keeps the remaining
items queued for the next sync.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var bar *progressbar.ProgressBar
			progress := func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("Syncing"),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
				}
				_ = bar.Set(done)
			}

			p, err := initPortal(ctx, progress)
			if err != nil {
				return err
			}
			defer p.close()

			result, err := p.controller.SyncNow(ctx)

			for _, failure := range result.Failures {
				fmt.Println(cli.FormatError(fmt.Sprintf("item %s dropped: %v", failure.ItemID, failure.Err)))
			}

			if err != nil {
				fmt.Println(cli.FormatWarning(fmt.Sprintf(
					"Sync stopped: %d applied, %d still queued", result.Applied, result.Remaining)))
				if common.IsRetryable(err) {
					return common.NewUserError("Connectivity failed mid-sync; the remaining items are kept for the next sync", err)
				}
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Sync complete: %d applied", result.Applied)))
			return nil
		},
	}
}
