package wire

import (
	"bytes"
	"strconv"
	"strings"
)

var headerTerminator = []byte("\r\n\r\n")

// Header is a single request header, written verbatim as "Name: Value".
type Header struct {
	Name  string
	Value string
}

// Response is a parsed HTTP response. Header names keep the case the server
// sent them in; a repeated name keeps its last value.
type Response struct {
	StatusCode int
	Header     map[string]string
	Body       []byte
}

// ParseResponse splits a complete raw response into status, headers and body.
// Status codes of 400 and above are returned as a KindRequestFailed error.
func ParseResponse(raw []byte) (*Response, error) {
	idx := bytes.Index(raw, headerTerminator)
	if idx < 0 {
		return nil, invalidResponse("missing header terminator")
	}
	head := string(raw[:idx])
	body := raw[idx+len(headerTerminator):]

	lines := strings.Split(head, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}

	fields := strings.Fields(lines[0])
	if len(fields) < 2 {
		return nil, invalidResponse("malformed status line")
	}
	code, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return nil, invalidResponse("malformed status code " + strconv.Quote(fields[1]))
	}
	if code >= 400 {
		return nil, &Error{Kind: KindRequestFailed, StatusCode: int(code)}
	}

	header := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		header[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return &Response{
		StatusCode: int(code),
		Header:     header,
		Body:       body,
	}, nil
}

// Get returns the value of the header with exactly this name.
func (r *Response) Get(name string) (string, bool) {
	v, ok := r.Header[name]
	return v, ok
}
