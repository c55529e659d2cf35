package downloader_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/datallboy/rangefetch/internal/api"
	"github.com/datallboy/rangefetch/internal/api/controllers"
	"github.com/datallboy/rangefetch/internal/app"
	"github.com/datallboy/rangefetch/internal/domain"
	"github.com/datallboy/rangefetch/internal/downloader"
	"github.com/datallboy/rangefetch/internal/infra/config"
	"github.com/datallboy/rangefetch/internal/infra/logger"
	"github.com/datallboy/rangefetch/internal/wire"
)

func fixture(t *testing.T, data []byte, policy controllers.ChunkPolicy) domain.Endpoint {
	t.Helper()
	appCtx := app.NewContext(&config.Config{}, logger.Discard())
	blob := controllers.NewBlobController("blob.bin", data, policy)

	srv := httptest.NewServer(api.NewRouter(appCtx, blob))
	t.Cleanup(srv.Close)
	return domain.ParseEndpoint(srv.URL)
}

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 7)
	}
	return data
}

func testOptions() wire.Options {
	opts := wire.DefaultOptions()
	opts.ReadTimeout = 2 * time.Second
	return opts
}

func TestDownloadAgainstTruncatingServer(t *testing.T) {
	data := testData(50)
	ep := fixture(t, data, controllers.ChunkPolicy{ChunkSize: 7})

	res, err := downloader.NewForEndpoint(ep, testOptions(), logger.Discard()).Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !bytes.Equal(res.Data, data) {
		t.Fatalf("assembled data mismatch: got %d bytes", len(res.Data))
	}
	if res.DeclaredLength != 50 {
		t.Errorf("declared length = %d", res.DeclaredLength)
	}
	if res.Requests != 8 {
		t.Errorf("expected 8 requests for 50 bytes in 7 byte chunks, got %d", res.Requests)
	}
}

func TestDownloadWithJitter(t *testing.T) {
	data := testData(4096)
	ep := fixture(t, data, controllers.ChunkPolicy{ChunkSize: 300, Jitter: true, Seed: 42})

	got, err := downloader.NewForEndpoint(ep, testOptions(), logger.Discard()).DownloadFully(context.Background())
	if err != nil {
		t.Fatalf("DownloadFully: %v", err)
	}
	if domain.HashBytes(got) != domain.HashBytes(data) {
		t.Fatal("digest mismatch after jittered download")
	}
}

func TestDownloadByName(t *testing.T) {
	data := testData(100)
	ep := fixture(t, data, controllers.ChunkPolicy{})
	ep.Path = "/blob.bin"

	res, err := downloader.NewForEndpoint(ep, testOptions(), logger.Discard()).Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if res.Requests != 1 || !bytes.Equal(res.Data, data) {
		t.Errorf("untruncated server should need one request, got %d", res.Requests)
	}
}

func TestDownloadNotFound(t *testing.T) {
	ep := fixture(t, testData(10), controllers.ChunkPolicy{})
	ep.Path = "/other.bin"

	_, err := downloader.NewForEndpoint(ep, testOptions(), logger.Discard()).Download(context.Background())
	if !errors.Is(err, downloader.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var werr *wire.Error
	if !errors.As(err, &werr) || werr.Kind != wire.KindRequestFailed || werr.StatusCode != 404 {
		t.Fatalf("expected wrapped 404, got %v", err)
	}
}

func TestDownloadEmptyResource(t *testing.T) {
	ep := fixture(t, nil, controllers.ChunkPolicy{ChunkSize: 7})

	res, err := downloader.NewForEndpoint(ep, testOptions(), logger.Discard()).Download(context.Background())
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(res.Data) != 0 || res.Requests != 1 {
		t.Errorf("expected empty body from one request, got %d bytes in %d", len(res.Data), res.Requests)
	}
}
