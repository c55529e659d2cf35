package main

import (
	"context"
	"fmt"

	"github.com/datallboy/rangefetch/internal/domain"
	"github.com/datallboy/rangefetch/internal/downloader"
	"github.com/datallboy/rangefetch/internal/output"
	"github.com/datallboy/rangefetch/internal/wire"
	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [url] [output]",
	Short: "Download a resource in full and write it to disk",
	Long: `Download requests the resource once, then keeps issuing Range requests
until the announced Content-Length has been received. The SHA-256 of the
assembled bytes is printed before they are written.`,
	Args: cobra.MaximumNArgs(2),
	RunE: cmdFunc(runDownload),
}

func runDownload(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg := appCtx.Config
	url, out := cfg.Download.ServerURL, cfg.Download.Output
	if len(args) > 0 {
		url = args[0]
	}
	if len(args) > 1 {
		out = args[1]
	}

	rec := domain.NewDownloadRecord(url, out)
	appCtx.Record(ctx, rec)
	appCtx.Logger.Debug("Download %s: %s -> %s", rec.ID, rec.Endpoint, out)

	opts := wire.Options{
		WriteTimeout: cfg.Client.WriteTimeout,
		ReadTimeout:  cfg.Client.ReadTimeout,
		DialTimeout:  cfg.Client.DialTimeout,
		BufferSize:   cfg.Client.BufferSize,
	}
	res, err := downloader.NewForEndpoint(rec.Endpoint, opts, appCtx.Logger).Download(ctx)
	rec.DeclaredLength = res.DeclaredLength
	rec.Requests = res.Requests
	if err != nil {
		return fail(rec, err)
	}

	sum := domain.HashBytes(res.Data)
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "SHA-256 hash of received data: %s\n", sum)

	if err := output.WriteFile(out, res.Data); err != nil {
		return fail(rec, fmt.Errorf("failed to write %s: %w", out, err))
	}
	fmt.Fprintf(stdout, "Binary contents successfully written to %s\n", out)

	rec.Complete(int64(len(res.Data)), res.Requests, sum)
	// The signal context may already be done; history is written regardless
	appCtx.Record(context.Background(), rec)
	appCtx.Logger.Info("Download %s finished: %d bytes in %d requests (%s)", rec.ID, rec.BytesReceived, rec.Requests, rec.Duration())
	return nil
}

func fail(rec *domain.DownloadRecord, err error) error {
	rec.Fail(err)
	appCtx.Record(context.Background(), rec)
	appCtx.Logger.Debug("Download %s failed: %v", rec.ID, err)
	return err
}
