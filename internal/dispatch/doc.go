// Package dispatch routes MCP protocol requests to their handlers.
//
// # Overview
//
// The Dispatcher receives one decoded JSON-RPC request per call, looks up
// the target method, consults the registry, and produces a response
// envelope. It is stateless; each request is a one-shot routing decision.
//
// # Method routing
//
//	initialize       server info + capability flags from config
//	tools/list       registered tool descriptors
//	tools/call       custom handler, or the REST bridge when none is set
//	resources/list   configured resource catalog
//	resources/read   resource handler lookup by URI
//	prompts/list     configured prompt catalog
//	prompts/get      prompt handler lookup by name
//	notifications/*  logged side effect, no response body
//
// Methods prefixed notifications/ are checked before the main switch and
// are guaranteed to never produce a response; the transport acknowledges
// them with a bare success status. Anything else unrecognized yields
// -32601 with the offending method name.
//
// # Error mapping
//
//	-32601  unknown method
//	-32602  unknown tool (message enumerates registered tool names),
//	        missing required params
//	-32603  handler, bridge, or resolver failure; panics caught at the
//	        dispatch boundary
//
// Nothing escapes to the transport as an unhandled fault: every
// non-notification request gets a well-formed success or error envelope.
package dispatch
