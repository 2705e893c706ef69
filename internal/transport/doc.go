// Package transport adapts the protocol dispatcher to HTTP.
//
// The Adapter owns one endpoint (default /mcp) accepting JSON-RPC 2.0
// messages via POST. Used as Middleware it claims only POST requests to
// that path; everything else passes to the next handler in the host
// pipeline unchanged, which is the core's only contract with its hosting
// server. ServeHTTP mounts the endpoint standalone.
//
// Notifications receive a 202 Accepted acknowledgment with no body; all
// other accepted requests receive a well-formed JSON-RPC success or error
// envelope.
package transport
