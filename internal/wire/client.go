package wire

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

// Options configures the wire client.
type Options struct {
	// WriteTimeout bounds writing the request.
	// Default: 10s
	WriteTimeout time.Duration

	// ReadTimeout bounds each read of the response.
	// Default: 5s
	ReadTimeout time.Duration

	// DialTimeout bounds connection establishment.
	// Default: 10s
	DialTimeout time.Duration

	// BufferSize is the size of the read buffer.
	// Default: 4096
	BufferSize int
}

// DefaultOptions returns options with the standard bounds.
func DefaultOptions() Options {
	return Options{
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  5 * time.Second,
		DialTimeout:  10 * time.Second,
		BufferSize:   4096,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = d.WriteTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = d.ReadTimeout
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = d.DialTimeout
	}
	if o.BufferSize <= 0 {
		o.BufferSize = d.BufferSize
	}
	return o
}

// Client performs one HTTP/1.1 exchange per call against a fixed host and
// port. Every call opens its own connection, asks the server to close it,
// and reads the response until the server does.
type Client struct {
	host string
	port uint16
	opts Options
}

// NewClient creates a client for host:port.
func NewClient(host string, port uint16, opts Options) *Client {
	return &Client{
		host: host,
		port: port,
		opts: opts.withDefaults(),
	}
}

// SendRequest writes a body-less request for path and returns the parsed
// response. Headers are sent after Host and Connection, in order.
func (c *Client) SendRequest(ctx context.Context, method, path string, headers []Header) (*Response, error) {
	addr := net.JoinHostPort(c.host, strconv.Itoa(int(c.port)))

	d := net.Dialer{Timeout: c.opts.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &Error{Kind: KindConnectionFailed, Err: err}
	}
	defer conn.Close()

	// Deadlines only bound each wait; closing the conn unblocks a read
	// in progress as soon as ctx is done.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := c.writeRequest(conn, method, path, headers); err != nil {
		return nil, cancelled(ctx, err)
	}

	raw, err := c.readAll(conn)
	if err != nil {
		return nil, cancelled(ctx, err)
	}

	return ParseResponse(raw)
}

func (c *Client) writeRequest(conn net.Conn, method, path string, headers []Header) error {
	if err := conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return classify(err)
	}

	w := bufio.NewWriter(conn)
	fmt.Fprintf(w, "%s %s HTTP/1.1\r\n", method, path)
	fmt.Fprintf(w, "Host: %s:%d\r\n", c.host, c.port)
	w.WriteString("Connection: close\r\n")
	for _, h := range headers {
		fmt.Fprintf(w, "%s: %s\r\n", h.Name, h.Value)
	}
	w.WriteString("\r\n")

	// bufio.Writer holds the first write error and returns it from Flush
	if err := w.Flush(); err != nil {
		return classify(err)
	}
	return nil
}

// cancelled reports ctx's error in place of err once ctx is done, since the
// failure is then the closed connection rather than the peer.
func cancelled(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// readAll reads until the peer closes the connection. The read deadline is
// renewed before every read, so it bounds each wait rather than the total.
func (c *Client) readAll(conn net.Conn) ([]byte, error) {
	var raw bytes.Buffer
	buf := make([]byte, c.opts.BufferSize)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
			return nil, classify(err)
		}

		n, err := conn.Read(buf)
		raw.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			return raw.Bytes(), nil
		}
		if err != nil {
			return nil, classify(err)
		}
	}
}
