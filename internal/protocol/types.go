package protocol

import (
	"strconv"
	"strings"
)

const (
	Version = "MCTP/1.0"

	MethodGet     = "GET"
	RequestPrefix = "Request: " + MethodGet + " "
	StatusPrefix  = "Status: "
	DefaultPath   = "/"

	StatusOK       = "200 OK"
	StatusNotFound = "404 Not Found"
	StatusUnknown  = "Unknown"

	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"

	ContentTypeMarkdown = "text/markdown"
	ContentTypePlain    = "text/plain"

	NotFoundBody = "Not Found"
)

// Request is one MCTP request. Method is always GET.
type Request struct {
	Method string
	Path   string
}

// NewRequest builds a GET request, defaulting an empty path to "/".
func NewRequest(path string) Request {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	return Request{Method: MethodGet, Path: path}
}

// Header is one name/value pair.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list. Names compare case-insensitively.
type Headers []Header

// Get returns the value of the first header matching name.
func (h Headers) Get(name string) (string, bool) {
	for _, kv := range h {
		if strings.EqualFold(kv.Name, name) {
			return kv.Value, true
		}
	}
	return "", false
}

// Set replaces the first header matching name in place, or appends it.
func (h *Headers) Set(name, value string) {
	for i, kv := range *h {
		if strings.EqualFold(kv.Name, name) {
			(*h)[i].Value = value
			return
		}
	}
	*h = append(*h, Header{Name: name, Value: value})
}

// Del removes every header matching name.
func (h *Headers) Del(name string) {
	out := (*h)[:0]
	for _, kv := range *h {
		if !strings.EqualFold(kv.Name, name) {
			out = append(out, kv)
		}
	}
	*h = out
}

func (h Headers) Len() int {
	return len(h)
}

// Map flattens headers into a map; later duplicates win.
func (h Headers) Map() map[string]string {
	out := make(map[string]string, len(h))
	for _, kv := range h {
		out[kv.Name] = kv.Value
	}
	return out
}

// Response is one decoded or to-be-encoded MCTP response.
type Response struct {
	Status  string
	Headers Headers
	Body    []byte
}

// ContentLength parses the declared Content-Length header.
func (r Response) ContentLength() (int, bool) {
	raw, ok := r.Headers.Get(HeaderContentLength)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ContentType returns the declared Content-Type header.
func (r Response) ContentType() string {
	v, _ := r.Headers.Get(HeaderContentType)
	return v
}

// OK reports whether the response carries the 200 status.
func (r Response) OK() bool {
	return r.Status == StatusOK
}

// NotFound returns the fixed 404 response.
func NotFound() Response {
	return Response{
		Status:  StatusNotFound,
		Headers: Headers{{Name: HeaderContentType, Value: ContentTypePlain}},
		Body:    []byte(NotFoundBody),
	}
}

// Document returns a 200 response carrying markdown content.
func Document(content []byte) Response {
	return Response{
		Status:  StatusOK,
		Headers: Headers{{Name: HeaderContentType, Value: ContentTypeMarkdown}},
		Body:    content,
	}
}
