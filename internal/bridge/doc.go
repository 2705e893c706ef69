// Package bridge translates tool invocations into REST calls.
//
// # Overview
//
// Given a tool definition and the call's arguments, the Bridge constructs
// and executes exactly one outbound HTTP request and normalizes the
// response. Tools registered with a custom handler bypass the bridge
// entirely; the dispatcher selects the execution strategy before the
// bridge is involved.
//
// # Placement policy
//
// Arguments are placed by the route's HTTP verb:
//
//   - path: every :name token in the route template consumes the
//     argument of the same name
//   - GET and other read verbs: remaining defined arguments become URL
//     query parameters
//   - POST, PUT, PATCH: remaining arguments become a JSON body, with
//     Content-Type: application/json always set
//
// The path-consumed key set is re-derived from the original route
// template rather than a static list, so one definition serves argument
// sets with the path key in any position.
//
// # Headers
//
// Only the Authorization header of the originating protocol request is
// forwarded. A fixed User-Agent identifies the bridge. Nothing else
// propagates.
//
// # Errors
//
// A non-2xx/3xx status from the endpoint yields a *StatusError embedding
// the numeric status and the response body verbatim. On success the
// result is the decoded JSON value when the endpoint declares
// application/json, or the raw text body otherwise.
package bridge
