// Package demo supplies sample tools, a resource, and a prompt backed by
// in-process handlers. It exists to exercise the custom-handler execution
// path end to end and to give `mcp-bridge serve -demo` something to show.
package demo
