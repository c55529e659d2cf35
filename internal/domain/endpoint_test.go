package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Endpoint
	}{
		{"full", "http://example.com:8080/file.bin", Endpoint{"example.com", 8080, "/file.bin"}},
		{"nested path", "http://example.com:8080/a/b/c.bin", Endpoint{"example.com", 8080, "/a/b/c.bin"}},
		{"no scheme", "example.com:8080/file.bin", Endpoint{"example.com", 8080, "/file.bin"}},
		{"no port", "http://example.com/file.bin", Endpoint{"example.com", DefaultPort, "/file.bin"}},
		{"no path", "http://example.com:8080", Endpoint{"example.com", 8080, "/"}},
		{"trailing slash", "http://example.com:8080/", Endpoint{"example.com", 8080, "/"}},
		{"no host", "http://:8080/file.bin", Endpoint{DefaultHost, 8080, "/file.bin"}},
		{"no scheme no port", "example.com/file.bin", Endpoint{"example.com", DefaultPort, "/file.bin"}},
		{"no port no path", "http://example.com", Endpoint{"example.com", DefaultPort, "/"}},
		{"host only", "example.com", Endpoint{"example.com", DefaultPort, "/"}},
		{"empty", "", Endpoint{DefaultHost, DefaultPort, "/"}},
		{"scheme only", "http://", Endpoint{DefaultHost, DefaultPort, "/"}},
		{"bad port", "http://example.com:http/x", Endpoint{"example.com", DefaultPort, "/x"}},
		{"port overflow", "http://example.com:70000/x", Endpoint{"example.com", DefaultPort, "/x"}},
		{"empty port", "http://example.com:/x", Endpoint{"example.com", DefaultPort, "/x"}},
		{"plus port", "http://example.com:+81/x", Endpoint{"example.com", 81, "/x"}},
		{"negative port", "http://example.com:-81/x", Endpoint{"example.com", DefaultPort, "/x"}},
		{"whitespace", "http://example.com : 81 / x ", Endpoint{"example.com", 81, "/x"}},
		{"localhost", "http://localhost:8080", Endpoint{"localhost", 8080, "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEndpoint(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseEndpoint(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
			if got.Path[0] != '/' {
				t.Errorf("path %q does not start with /", got.Path)
			}
		})
	}
}

func TestEndpointAddr(t *testing.T) {
	ep := Endpoint{Host: "127.0.0.1", Port: 8080, Path: "/x"}
	if got := ep.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
	if got := ep.String(); got != "http://127.0.0.1:8080/x" {
		t.Errorf("String() = %q", got)
	}
}
