package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded downloads, newest first",
	Args:  cobra.NoArgs,
	RunE:  cmdFunc(runHistory),
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records (0 for all)")
}

func runHistory(ctx context.Context, cmd *cobra.Command, _ []string) error {
	if appCtx.Store == nil {
		return errors.New("download history is disabled")
	}

	records, err := appCtx.Store.ListDownloads(ctx, historyLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tBYTES\tREQUESTS\tURL\tDETAIL")
	for _, r := range records {
		detail := r.SHA256
		if r.Error != "" {
			detail = r.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Status, r.BytesReceived, r.Requests, r.URL, detail)
	}
	return w.Flush()
}
