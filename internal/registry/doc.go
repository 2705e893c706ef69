// Package registry provides the definition store for the MCP bridge.
//
// # Overview
//
// A Registry maps route keys (HTTP verb + path template) to tool
// definitions and holds one Config with the server identity plus the
// static resource and prompt catalogs.
//
// # Lifecycle
//
// Construct one Registry per server, populate it with Register and
// Configure during startup, then serve traffic against it read-only:
//
//	reg := registry.New(logger)
//	reg.Configure(registry.Config{ServerName: "my-server"})
//	reg.Register(registry.ToolDef{
//		Method: "GET",
//		Path:   "/items/:id",
//		Name:   "get_item",
//	})
//
// Mutating operations are not ordered against concurrent reads; mutate
// before serving, or accept unspecified interleavings. All operations are
// mutex-guarded so concurrent mutation is never a data race.
//
// # Known edge cases
//
//   - Registering the same (method, path) twice replaces the earlier
//     definition silently; the key keeps its iteration-order position.
//   - Duplicate tool names across different routes are not rejected;
//     Route returns the first match in registration order.
//   - Clear removes routes only. The configuration survives a Clear by
//     design; tests needing full isolation build a fresh Registry.
package registry
