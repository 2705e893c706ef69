// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, duration parsing, and env overrides

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "0.0.0.0:9090"
  mcp_path: "/rpc"
  name: "test-bridge"
  version: "2.0.0"
  base_path: "/api/v1"

bridge:
  timeout: "5s"
  default_port: "4000"

logging:
  level: "debug"
  format: "json"

tools:
  - name: get_item
    description: "Fetch one item"
    method: GET
    path: "/items/:id"
    schema:
      type: object
      properties:
        id:
          type: string
      required: [id]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("unexpected http_addr: %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.MCPPath != "/rpc" {
		t.Errorf("unexpected mcp_path: %q", cfg.Server.MCPPath)
	}
	if cfg.Bridge.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Bridge.Timeout)
	}
	if cfg.Bridge.DefaultPort != "4000" {
		t.Errorf("unexpected default_port: %q", cfg.Bridge.DefaultPort)
	}
	if len(cfg.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(cfg.Tools))
	}

	def, err := cfg.Tools[0].Definition()
	if err != nil {
		t.Fatalf("converting tool: %v", err)
	}
	if def.Name != "get_item" || def.Method != "GET" || def.Path != "/items/:id" {
		t.Errorf("unexpected definition: %+v", def)
	}
	if def.InputSchema == nil || def.InputSchema.Type != "object" {
		t.Errorf("expected object schema, got %+v", def.InputSchema)
	}
	if def.InputSchema.Properties["id"].Type != "string" {
		t.Errorf("expected id property of type string")
	}
}

func TestLoad_DefaultsApply(t *testing.T) {
	path := writeConfig(t, `
server:
  name: "only-a-name"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("expected default http_addr, got %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.MCPPath != "/mcp" {
		t.Errorf("expected default mcp_path, got %q", cfg.Server.MCPPath)
	}
	if cfg.Bridge.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Bridge.Timeout)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BRIDGE_ADDR", "127.0.0.1:7070")

	path := writeConfig(t, `
server:
  http_addr: "${TEST_BRIDGE_ADDR}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:7070" {
		t.Errorf("expected expanded addr, got %q", cfg.Server.HTTPAddr)
	}
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	t.Setenv("MCP_BRIDGE_LOG_LEVEL", "error")
	t.Setenv("MCP_BRIDGE_TIMEOUT", "2s")

	path := writeConfig(t, `
logging:
  level: "debug"
bridge:
  timeout: "10s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected env override to win, got %q", cfg.Logging.Level)
	}
	if cfg.Bridge.Timeout != 2*time.Second {
		t.Errorf("expected env timeout to win, got %v", cfg.Bridge.Timeout)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
bridge:
  timeout: "not-a-duration"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout in error, got %v", err)
	}
}

func TestValidate_ToolRequirements(t *testing.T) {
	path := writeConfig(t, `
tools:
  - description: "missing name"
    method: GET
    path: "/x"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for unnamed tool")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
