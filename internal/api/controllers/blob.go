package controllers

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v5"
)

var (
	ErrRangeUnsatisfiable = errors.New("range not satisfiable")
	ErrRangeMalformed     = errors.New("malformed range")
)

// ChunkPolicy decides how much of each requested window is actually sent.
type ChunkPolicy struct {
	// ChunkSize caps the bytes sent per response. 0 sends the whole window.
	ChunkSize int

	// Jitter sends a random amount in [1, ChunkSize] instead of exactly
	// ChunkSize (or [1, window] when ChunkSize is 0).
	Jitter bool

	// Seed makes the jitter sequence reproducible.
	Seed uint64
}

// BlobController serves one in-memory file and deliberately under-delivers:
// Content-Length always announces the full requested window while the body
// may stop short, after which the server closes the connection.
type BlobController struct {
	Name   string
	Data   []byte
	Policy ChunkPolicy

	mu  sync.Mutex
	rng *rand.Rand
}

func NewBlobController(name string, data []byte, policy ChunkPolicy) *BlobController {
	return &BlobController{
		Name:   name,
		Data:   data,
		Policy: policy,
		rng:    rand.New(rand.NewPCG(policy.Seed, policy.Seed^0x9e3779b97f4a7c15)),
	}
}

// Handle serves GET / and GET /:name.
func (ctrl *BlobController) Handle(c *echo.Context) error {
	if name := c.Param("name"); name != "" && ctrl.Name != "" && name != ctrl.Name {
		return c.String(http.StatusNotFound, "Not found")
	}

	size := int64(len(ctrl.Data))
	start, end := int64(0), size

	rangeHeader := c.Request().Header.Get("Range")
	partial := rangeHeader != ""
	if partial {
		var err error
		start, end, err = ParseRange(rangeHeader, size)
		if err != nil {
			c.Response().Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			return c.String(http.StatusRequestedRangeNotSatisfiable, err.Error())
		}
	}

	window := ctrl.Data[start:end]
	sent := window[:ctrl.sendLength(len(window))]

	h := c.Response().Header()
	h.Set("Accept-Ranges", "bytes")
	h.Set("Content-Length", strconv.Itoa(len(window)))

	status := http.StatusOK
	if partial {
		status = http.StatusPartialContent
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end-1, size))
	}

	return c.Blob(status, "application/octet-stream", sent)
}

func (ctrl *BlobController) sendLength(window int) int {
	if window == 0 {
		return 0
	}

	limit := window
	if ctrl.Policy.ChunkSize > 0 && ctrl.Policy.ChunkSize < limit {
		limit = ctrl.Policy.ChunkSize
	}
	if !ctrl.Policy.Jitter {
		return limit
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	return ctrl.rng.IntN(limit) + 1
}

// ParseRange parses a single "bytes=" range against a resource of size
// bytes and returns the half-open window [start, end). The end value is read
// as exclusive and clamped to size; "bytes=s-" runs to the end and
// "bytes=-n" selects the last n bytes.
func ParseRange(header string, size int64) (start, end int64, err error) {
	set, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(set, ",") {
		return 0, 0, fmt.Errorf("%w: %q", ErrRangeMalformed, header)
	}

	first, last, ok := strings.Cut(set, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrRangeMalformed, header)
	}
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)

	if first == "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, fmt.Errorf("%w: %q", ErrRangeMalformed, header)
		}
		if n > size {
			n = size
		}
		if n == 0 {
			return 0, 0, fmt.Errorf("%w: %q against %d bytes", ErrRangeUnsatisfiable, header, size)
		}
		return size - n, size, nil
	}

	start, err = strconv.ParseInt(first, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrRangeMalformed, header)
	}

	end = size
	if last != "" {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrRangeMalformed, header)
		}
		if end > size {
			end = size
		}
	}

	if start >= size || end <= start {
		return 0, 0, fmt.Errorf("%w: %q against %d bytes", ErrRangeUnsatisfiable, header, size)
	}
	return start, end, nil
}
