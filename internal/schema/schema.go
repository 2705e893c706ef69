// ABOUTME: Convenience builders for JSON Schema tool input descriptions.
// ABOUTME: Pure data factories; schemas are advisory discovery metadata, never validated.

package schema

import "github.com/google/jsonschema-go/jsonschema"

// Object builds an object schema from property schemas and required names.
func Object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// String builds a string property schema.
func String(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

// Number builds a number property schema.
func Number(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number", Description: description}
}

// Integer builds an integer property schema.
func Integer(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description}
}

// Boolean builds a boolean property schema.
func Boolean(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: description}
}

// Array builds an array property schema with the given item schema.
func Array(description string, items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Description: description, Items: items}
}

// Enum builds a string property schema restricted to the given values.
func Enum(description string, values ...any) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description, Enum: values}
}
