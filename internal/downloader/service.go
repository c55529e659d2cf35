package downloader

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/datallboy/rangefetch/internal/domain"
	"github.com/datallboy/rangefetch/internal/wire"
)

// Requester performs one request/response exchange. *wire.Client is the
// production implementation.
type Requester interface {
	SendRequest(ctx context.Context, method, path string, headers []wire.Header) (*wire.Response, error)
}

// Logger is the subset of the application logger the downloader uses.
type Logger interface {
	Debug(f string, v ...any)
	Info(f string, v ...any)
	Warn(f string, v ...any)
}

// Part is one response's contribution to the resource. Length is that
// response's Content-Length, -1 if absent; it need not match len(Data).
type Part struct {
	Length int64
	Data   []byte
}

// Result is the outcome of Download. Data is nil unless it succeeded.
type Result struct {
	Data []byte

	// DeclaredLength is the Content-Length of the first response.
	DeclaredLength int64

	// Requests counts every exchange, the initial GET included.
	Requests int
}

// Downloader fetches one resource, issuing range requests until the length
// declared by the first response has been received.
type Downloader struct {
	client Requester
	path   string
	log    Logger
}

// New creates a Downloader for path served by client.
func New(client Requester, path string, log Logger) *Downloader {
	return &Downloader{client: client, path: path, log: log}
}

// NewForEndpoint creates a Downloader backed by a wire.Client for ep.
func NewForEndpoint(ep domain.Endpoint, opts wire.Options, log Logger) *Downloader {
	return New(wire.NewClient(ep.Host, ep.Port, opts), ep.Path, log)
}

// DownloadFully returns the complete resource body.
func (d *Downloader) DownloadFully(ctx context.Context) ([]byte, error) {
	res, err := d.Download(ctx)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Download is DownloadFully with request accounting. It fails with
// ErrMissingLength when the first response has no Content-Length, and with
// ErrInvalidResponse when a range request yields no bytes. Nothing is retried.
//
// On failure the returned Result is still non-nil. It carries the requests
// made and the declared length (-1 if never learned) but no Data, since
// partial progress is discarded.
func (d *Downloader) Download(ctx context.Context) (*Result, error) {
	res := &Result{DeclaredLength: -1}

	first, err := d.get(ctx, nil)
	res.Requests++
	if err != nil {
		return res, err
	}

	total := first.Length
	if total < 0 {
		return res, ErrMissingLength
	}
	res.DeclaredLength = total

	data := d.clamp(first.Data, total)
	d.log.Debug("GET %s: %d of %d bytes", d.path, len(data), total)

	for int64(len(data)) < total {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := int64(len(data))
		part, err := d.getRange(ctx, start, total)
		res.Requests++
		if err != nil {
			return res, err
		}
		if len(part.Data) == 0 {
			return res, invalidResponse("range bytes=%d-%d returned no data", start, total)
		}

		data = append(data, d.clamp(part.Data, total-start)...)
		d.log.Debug("GET %s range %d-%d: +%d bytes, %d of %d", d.path, start, total, len(part.Data), len(data), total)
	}

	d.log.Info("Downloaded %s: %d bytes in %d request(s)", d.path, len(data), res.Requests)

	res.Data = data
	return res, nil
}

// clamp drops bytes beyond limit so the assembled buffer never outgrows the
// declared length.
func (d *Downloader) clamp(data []byte, limit int64) []byte {
	if int64(len(data)) <= limit {
		return data
	}
	d.log.Warn("Server sent %d bytes where %d remained, discarding the excess", len(data), limit)
	return data[:limit]
}

// get requests the whole resource.
func (d *Downloader) get(ctx context.Context, headers []wire.Header) (*Part, error) {
	resp, err := d.client.SendRequest(ctx, "GET", d.path, headers)
	if err != nil {
		return nil, fromWire(err)
	}
	if err := validateResponse(resp); err != nil {
		return nil, err
	}
	return &Part{
		Length: contentLength(resp),
		Data:   resp.Body,
	}, nil
}

// getRange requests bytes from start on. end is the declared total length,
// sent as-is rather than as the inclusive last offset.
func (d *Downloader) getRange(ctx context.Context, start, end int64) (*Part, error) {
	return d.get(ctx, []wire.Header{RangeHeader(start, end)})
}

// RangeHeader builds the Range header for [start, end).
func RangeHeader(start, end int64) wire.Header {
	return wire.Header{Name: "Range", Value: fmt.Sprintf("bytes=%d-%d", start, end)}
}

// validateResponse rejects status codes above 299. The wire layer already
// rejects >= 400, so in practice this catches 3xx.
func validateResponse(resp *wire.Response) error {
	if resp.StatusCode > 299 {
		return invalidResponse("non-ok response status: %d", resp.StatusCode)
	}
	return nil
}

// contentLength parses Content-Length as an unsigned decimal, returning -1
// when absent or invalid.
func contentLength(resp *wire.Response) int64 {
	v, ok := resp.Get("Content-Length")
	if !ok {
		return -1
	}
	// One leading plus sign is allowed, e.g. "+5"
	n, err := strconv.ParseUint(strings.TrimPrefix(v, "+"), 10, 63)
	if err != nil {
		return -1
	}
	return int64(n)
}
