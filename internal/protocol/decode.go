package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

var headerBodySeparator = []byte("\n\n")

// DecodeRequest returns the path named by the request line. Input without a
// well-formed request line resolves to "/"; this never fails. When several
// request lines are present the last one wins.
func DecodeRequest(raw []byte) string {
	path := DefaultPath
	for _, line := range strings.Split(string(raw), "\n") {
		if !strings.HasPrefix(line, RequestPrefix) {
			continue
		}
		if p := strings.TrimSpace(strings.TrimPrefix(line, RequestPrefix)); p != "" {
			path = p
		}
	}
	return path
}

// ReadRequest reads request lines from r until the blank-line terminator or
// EOF, then decodes them leniently. Reading more than limit bytes without a
// terminator fails with ErrRequestTooLong.
func ReadRequest(r io.Reader, limit int64) (string, error) {
	br := bufio.NewReader(io.LimitReader(r, limit+1))
	var buf bytes.Buffer
	for {
		line, err := br.ReadBytes('\n')
		buf.Write(line)
		if int64(buf.Len()) > limit {
			return "", ErrRequestTooLong
		}
		if len(bytes.TrimRight(line, "\r\n")) == 0 && len(line) > 0 {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
	}
	return DecodeRequest(buf.Bytes()), nil
}

// DecodeResponse reconstructs a response from a complete byte stream. The
// stream is split once, on the first blank line; everything after it is the
// body, blank lines included. Header lines are kept in wire order, duplicates
// and case variants included.
func DecodeResponse(raw []byte) (Response, error) {
	if len(raw) == 0 {
		return Response{}, parseError(ErrEmptyResponse)
	}

	headerSection, body, found := bytes.Cut(raw, headerBodySeparator)
	if !found {
		body = nil
	}

	resp := Response{Status: StatusUnknown, Body: []byte{}}
	for _, line := range strings.Split(string(headerSection), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, StatusPrefix) {
			resp.Status = strings.TrimSpace(strings.TrimPrefix(line, StatusPrefix))
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		resp.Headers = append(resp.Headers, Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	if len(body) > 0 {
		resp.Body = append(resp.Body, body...)
	}
	return resp, nil
}

// ReadResponse buffers r until EOF and decodes the result once. Transport
// errors are returned as-is; oversize or empty streams are ParseErrors.
func ReadResponse(r io.Reader, limit int64) (Response, error) {
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Response{}, err
	}
	if int64(len(raw)) > limit {
		return Response{}, parseError(ErrResponseTooLong)
	}
	return DecodeResponse(raw)
}
