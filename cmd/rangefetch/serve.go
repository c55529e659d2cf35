package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/datallboy/rangefetch/internal/api"
	"github.com/datallboy/rangefetch/internal/api/controllers"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve a file that is delivered in short, truncated responses",
	Long: `Serve announces the full Content-Length of the requested window but closes
the connection after at most serve.chunk_size bytes, so clients must resume
with Range requests. A chunk size of 0 serves whole responses.`,
	Args: cobra.MaximumNArgs(1),
	RunE: cmdFunc(runServe),
}

func runServe(ctx context.Context, _ *cobra.Command, args []string) error {
	cfg := appCtx.Config.Serve
	file := cfg.File
	if len(args) > 0 {
		file = args[0]
	}
	if file == "" {
		return errors.New("no file to serve: pass one or set serve.file")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}

	blob := controllers.NewBlobController(filepath.Base(file), data, controllers.ChunkPolicy{
		ChunkSize: cfg.ChunkSize,
		Jitter:    cfg.Jitter,
		Seed:      cfg.Seed,
	})

	srv := &http.Server{
		Addr:     cfg.Addr,
		Handler:  api.NewRouter(appCtx, blob),
		ErrorLog: log.New(appCtx.Logger, "", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		appCtx.Logger.Info("Serving %s (%d bytes) on %s, chunk size %d", blob.Name, len(data), cfg.Addr, cfg.ChunkSize)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	appCtx.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
