package protocol

import (
	"bytes"
	"io"
	"strconv"
	"strings"
)

// EncodeRequest frames a GET request for path.
func EncodeRequest(path string) []byte {
	req := NewRequest(path)
	return []byte(RequestPrefix + req.Path + "\n\n")
}

// WriteRequest writes one framed request to w.
func WriteRequest(w io.Writer, path string) error {
	_, err := w.Write(EncodeRequest(path))
	return err
}

// EncodeResponse frames status, headers and body. Content-Type defaults to
// text/plain when absent. Content-Length is always recomputed from the
// byte length of body and written last. The status and every header name
// and value are flattened to one line; names containing ':' are dropped.
func EncodeResponse(status string, headers Headers, body []byte) []byte {
	status = singleLine(status)
	if status == "" {
		status = StatusUnknown
	}

	out := make(Headers, 0, len(headers)+2)
	contentType, ok := headers.Get(HeaderContentType)
	if contentType = singleLine(contentType); !ok || contentType == "" {
		contentType = ContentTypePlain
	}
	out.Set(HeaderContentType, contentType)
	for _, h := range headers {
		name := singleLine(h.Name)
		if !validHeaderName(name) {
			continue
		}
		out = append(out, Header{Name: name, Value: singleLine(h.Value)})
	}
	out.Set(HeaderContentLength, strconv.Itoa(len(body)))

	var buf bytes.Buffer
	buf.Grow(64 + len(body))
	buf.WriteString(Version)
	buf.WriteByte('\n')
	buf.WriteString(StatusPrefix)
	buf.WriteString(status)
	buf.WriteByte('\n')
	for _, h := range out {
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes()
}

// WriteResponse writes one framed response to w.
func WriteResponse(w io.Writer, resp Response) error {
	_, err := w.Write(EncodeResponse(resp.Status, resp.Headers, resp.Body))
	return err
}

// a stray newline would end the header section early
func singleLine(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(strings.ReplaceAll(v, "\n", " "))
}

func validHeaderName(name string) bool {
	switch {
	case name == "", strings.Contains(name, ":"):
		return false
	case strings.EqualFold(name, "Status"),
		strings.EqualFold(name, HeaderContentType),
		strings.EqualFold(name, HeaderContentLength):
		return false
	}
	return true
}
