// Package requestor owns the calling side of MCTP: one connection, one
// request, one response read until the responder closes the stream.
package requestor
