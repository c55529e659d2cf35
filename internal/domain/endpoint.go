package domain

import (
	"net"
	"strconv"
	"strings"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 80
	DefaultPath = "/"
)

// Endpoint is the resolved address of a resource on a plain HTTP server.
type Endpoint struct {
	Host string
	Port uint16
	Path string
}

// ParseEndpoint splits a URL of the form http://host[:port][/path] into an
// Endpoint. It never fails: missing or malformed parts fall back to
// DefaultHost, DefaultPort and DefaultPath, so the result is best-effort and
// not validated.
func ParseEndpoint(raw string) Endpoint {
	rest := strings.TrimPrefix(raw, "http://")

	authority, path, _ := strings.Cut(rest, "/")
	authority = strings.TrimSpace(authority)
	path = "/" + strings.TrimSpace(path)

	host, portStr, _ := strings.Cut(authority, ":")
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}

	port := uint16(DefaultPort)
	if p, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(portStr), "+"), 10, 16); err == nil {
		port = uint16(p)
	}

	return Endpoint{Host: host, Port: port, Path: path}
}

// Addr returns the dialable host:port pair.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

// String renders the endpoint back as a URL.
func (e Endpoint) String() string {
	return "http://" + e.Addr() + e.Path
}
