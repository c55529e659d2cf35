package wire

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

// rawServer accepts one connection, captures the request head and replies
// with reply before closing. If hold is set it never replies.
type rawServer struct {
	ln       net.Listener
	requests chan string
}

func newRawServer(t *testing.T, reply []byte, hold bool) *rawServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &rawServer{ln: ln, requests: make(chan string, 1)}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		var head strings.Builder
		for {
			line, err := r.ReadString('\n')
			head.WriteString(line)
			if err != nil || line == "\r\n" {
				break
			}
		}
		s.requests <- head.String()

		if hold {
			time.Sleep(2 * time.Second)
			return
		}
		// write in small pieces to exercise the read loop
		for len(reply) > 0 {
			n := min(7, len(reply))
			conn.Write(reply[:n])
			reply = reply[n:]
		}
	}()
	return s
}

func (s *rawServer) port() uint16 {
	return uint16(s.ln.Addr().(*net.TCPAddr).Port)
}

func TestSendRequestWireFormat(t *testing.T) {
	srv := newRawServer(t, []byte("HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\ndata"), false)

	client := NewClient("127.0.0.1", srv.port(), DefaultOptions())
	resp, err := client.SendRequest(context.Background(), "GET", "/file.bin", []Header{
		{Name: "Range", Value: "bytes=10-20"},
		{Name: "X-Trace", Value: "abc"},
	})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	want := "GET /file.bin HTTP/1.1\r\n" +
		"Host: 127.0.0.1:" + strconv.Itoa(int(srv.port())) + "\r\n" +
		"Connection: close\r\n" +
		"Range: bytes=10-20\r\n" +
		"X-Trace: abc\r\n" +
		"\r\n"
	if got := <-srv.requests; got != want {
		t.Errorf("request mismatch:\n got %q\nwant %q", got, want)
	}

	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != "data" {
		t.Errorf("expected body 'data', got %q", resp.Body)
	}
}

func TestSendRequestLargeBody(t *testing.T) {
	body := bytes.Repeat([]byte("0123456789abcdef"), 1024) // 16 KiB, several buffer fills
	reply := append([]byte("HTTP/1.1 200 OK\r\n\r\n"), body...)
	srv := newRawServer(t, reply, false)

	opts := DefaultOptions()
	opts.BufferSize = 1000
	resp, err := NewClient("127.0.0.1", srv.port(), opts).SendRequest(context.Background(), "GET", "/", nil)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if !bytes.Equal(resp.Body, body) {
		t.Errorf("body mismatch: got %d bytes, want %d", len(resp.Body), len(body))
	}
}

func TestSendRequestIgnoresContentLengthForFraming(t *testing.T) {
	// more bytes than advertised are still all returned
	srv := newRawServer(t, []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nabcdef"), false)

	resp, err := NewClient("127.0.0.1", srv.port(), DefaultOptions()).SendRequest(context.Background(), "GET", "/", nil)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if string(resp.Body) != "abcdef" {
		t.Errorf("expected full body, got %q", resp.Body)
	}
}

func TestSendRequestStatusFailure(t *testing.T) {
	srv := newRawServer(t, []byte("HTTP/1.1 404 Not Found\r\n\r\n"), false)

	_, err := NewClient("127.0.0.1", srv.port(), DefaultOptions()).SendRequest(context.Background(), "GET", "/", nil)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if err.Error() != "HTTP request failed with status 404" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestSendRequestInvalidResponse(t *testing.T) {
	srv := newRawServer(t, []byte("HTTP/1.1 200 OK\r\nno terminator"), false)

	_, err := NewClient("127.0.0.1", srv.port(), DefaultOptions()).SendRequest(context.Background(), "GET", "/", nil)
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestSendRequestTimeout(t *testing.T) {
	srv := newRawServer(t, nil, true)

	opts := DefaultOptions()
	opts.ReadTimeout = 100 * time.Millisecond
	start := time.Now()
	_, err := NewClient("127.0.0.1", srv.port(), opts).SendRequest(context.Background(), "GET", "/", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took too long: %s", elapsed)
	}
}

func TestSendRequestConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	_, err = NewClient("127.0.0.1", port, DefaultOptions()).SendRequest(context.Background(), "GET", "/", nil)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}

	var werr *Error
	if !errors.As(err, &werr) || werr.Err == nil {
		t.Errorf("expected the dial error to be kept, got %#v", err)
	}
}

func TestSendRequestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("127.0.0.1", 9, DefaultOptions()).SendRequest(ctx, "GET", "/", nil)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("expected ErrConnectionFailed, got %v", err)
	}
}

func TestSendRequestCancelledDuringRead(t *testing.T) {
	srv := newRawServer(t, nil, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(100*time.Millisecond, cancel)

	opts := DefaultOptions()
	opts.ReadTimeout = 5 * time.Second
	start := time.Now()
	_, err := NewClient("127.0.0.1", srv.port(), opts).SendRequest(ctx, "GET", "/", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancel was not honored mid-read, took %s", elapsed)
	}
}

func TestOptionsDefaults(t *testing.T) {
	got := Options{ReadTimeout: time.Second}.withDefaults()
	if got.ReadTimeout != time.Second {
		t.Errorf("explicit ReadTimeout overwritten: %s", got.ReadTimeout)
	}
	if got.WriteTimeout != 10*time.Second || got.DialTimeout != 10*time.Second || got.BufferSize != 4096 {
		t.Errorf("unexpected defaults: %+v", got)
	}
}

func TestClassify(t *testing.T) {
	if k := classify(errors.New("boom")).Kind; k != KindIO {
		t.Errorf("expected KindIO, got %s", k)
	}
	if k := classify(&net.OpError{Op: "read", Err: timeoutErr{}}).Kind; k != KindTimeout {
		t.Errorf("expected KindTimeout, got %s", k)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
