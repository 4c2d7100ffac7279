// Package responder owns the listening side of MCTP.
//
// Ownership boundary:
// - route table and document identifier normalization
// - document lookup under a content root
// - accept loop and the one-exchange-per-connection lifecycle
//
// Lookup failures never reach the wire as errors; they become the fixed
// 404 response and are logged with the connection's correlation id.
package responder
