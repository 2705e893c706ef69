// Package schema provides convenience builders for tool input schemas.
//
// The builders are pure data factories over jsonschema.Schema. Schemas
// describe tool input shape for protocol discovery only; the bridge never
// validates call arguments against them. Callers wanting validation add
// their own layer.
package schema
