// ABOUTME: Configuration loading and parsing for the MCP bridge.
// ABOUTME: Supports YAML files with environment variable expansion plus MCP_BRIDGE_* overrides.

package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/2389/mcp-bridge/internal/registry"
)

// Config represents the complete bridge configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Logging LoggingConfig `yaml:"logging"`
	Tools   []ToolConfig  `yaml:"tools"`
}

// ServerConfig holds the HTTP listener and server identity configuration.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	MCPPath  string `yaml:"mcp_path"`
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	BasePath string `yaml:"base_path"`
}

// BridgeConfig holds outbound REST call configuration.
type BridgeConfig struct {
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw  string `yaml:"timeout"`
	DefaultPort string `yaml:"default_port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ToolConfig declares one bridged tool in the config file. Tools declared
// here have no custom handler; every call goes through the REST bridge.
type ToolConfig struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Method      string         `yaml:"method"`
	Path        string         `yaml:"path"`
	Schema      map[string]any `yaml:"schema"`
}

// Definition converts the declared tool into a registry definition,
// translating the free-form YAML schema into a JSON Schema object.
func (tc ToolConfig) Definition() (registry.ToolDef, error) {
	def := registry.ToolDef{
		Method:      tc.Method,
		Path:        tc.Path,
		Name:        tc.Name,
		Description: tc.Description,
	}

	if tc.Schema != nil {
		data, err := json.Marshal(tc.Schema)
		if err != nil {
			return registry.ToolDef{}, fmt.Errorf("encoding schema for tool %q: %w", tc.Name, err)
		}
		var s jsonschema.Schema
		if err := json.Unmarshal(data, &s); err != nil {
			return registry.ToolDef{}, fmt.Errorf("parsing schema for tool %q: %w", tc.Name, err)
		}
		def.InputSchema = &s
	}

	return def, nil
}

// envOverrides are applied after file loading; they win over file values.
type envOverrides struct {
	HTTPAddr    string        `env:"MCP_BRIDGE_HTTP_ADDR"`
	MCPPath     string        `env:"MCP_BRIDGE_MCP_PATH"`
	LogLevel    string        `env:"MCP_BRIDGE_LOG_LEVEL"`
	LogFormat   string        `env:"MCP_BRIDGE_LOG_FORMAT"`
	Timeout     time.Duration `env:"MCP_BRIDGE_TIMEOUT"`
	DefaultPort string        `env:"MCP_BRIDGE_DEFAULT_PORT"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: ":8080",
			MCPPath:  "/mcp",
		},
		Bridge: BridgeConfig{
			Timeout:     30 * time.Second,
			DefaultPort: "3000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded,
// duration strings are parsed, and MCP_BRIDGE_* overrides are applied last.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays MCP_BRIDGE_* environment variables onto the config.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}

	if o.HTTPAddr != "" {
		c.Server.HTTPAddr = o.HTTPAddr
	}
	if o.MCPPath != "" {
		c.Server.MCPPath = o.MCPPath
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Timeout != 0 {
		c.Bridge.Timeout = o.Timeout
	}
	if o.DefaultPort != "" {
		c.Bridge.DefaultPort = o.DefaultPort
	}
	return nil
}

// Validate checks that all required configuration fields are present and valid.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	for i, tool := range c.Tools {
		if tool.Name == "" {
			return fmt.Errorf("tools[%d].name is required", i)
		}
		if tool.Method == "" || tool.Path == "" {
			return fmt.Errorf("tools[%d] (%s): method and path are required", i, tool.Name)
		}
	}
	return nil
}

// NewLogger builds a slog.Logger from the logging configuration.
func NewLogger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	if cfg.Bridge.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Bridge.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing bridge.timeout %q: %w", cfg.Bridge.TimeoutRaw, err)
		}
		cfg.Bridge.Timeout = d
	}
	return nil
}
