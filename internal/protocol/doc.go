// Package protocol owns the MCTP wire contract and parsing primitives.
//
// Ownership boundary:
// - request line framing and lenient request parsing
// - response framing (version, status, headers, body)
// - response reconstruction from a raw byte stream
//
// A request is a single line followed by a blank line:
//
//	Request: GET <path>\n
//	\n
//
// A response is a version line, a status line, header lines, a blank line
// and the raw body:
//
//	MCTP/1.0\n
//	Status: 200 OK\n
//	Content-Type: text/markdown\n
//	Content-Length: 2\n
//	\n
//	Hi
//
// Each exchange owns one connection; the responder closes it once the body
// is written, and that close is the requestor's end-of-message signal.
package protocol
