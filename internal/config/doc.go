// Package config handles configuration loading for the MCP bridge.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion, then overlaid with MCP_BRIDGE_* environment overrides. The
// package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	server:
//	  http_addr: "${BRIDGE_ADDR}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8080"        # MCP listener
//	  mcp_path: "/mcp"          # JSON-RPC endpoint path
//	  name: "my-bridge"         # serverInfo.name on initialize
//	  version: "1.0.0"          # serverInfo.version on initialize
//	  base_path: "/api/v1"      # prefix for bridged route templates
//
// Bridge settings:
//
//	bridge:
//	  timeout: "30s"            # outbound REST call timeout
//	  default_port: "3000"      # REST API port when no Host header
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Declarative bridged tools:
//
//	tools:
//	  - name: get_item
//	    description: "Fetch one item"
//	    method: GET
//	    path: "/items/:id"
//	    schema:
//	      type: object
//	      properties:
//	        id: {type: string}
//	      required: [id]
//
// # Environment Overrides
//
// MCP_BRIDGE_HTTP_ADDR, MCP_BRIDGE_MCP_PATH, MCP_BRIDGE_LOG_LEVEL,
// MCP_BRIDGE_LOG_FORMAT, MCP_BRIDGE_TIMEOUT, and MCP_BRIDGE_DEFAULT_PORT
// win over file values.
package config
