// ABOUTME: Entry point for the mcp-bridge server.
// ABOUTME: Exposes an MCP JSON-RPC endpoint bridging tool calls to REST endpoints.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/mcp-bridge/internal/bridge"
	"github.com/2389/mcp-bridge/internal/config"
	"github.com/2389/mcp-bridge/internal/demo"
	"github.com/2389/mcp-bridge/internal/dispatch"
	"github.com/2389/mcp-bridge/internal/registry"
	"github.com/2389/mcp-bridge/internal/transport"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                            _          _     _
  _ __ ___   ___ _ __      | |__  _ __(_) __| | __ _  ___
 | '_ ' _ \ / __| '_ \ ____| '_ \| '__| |/ _' |/ _' |/ _ \
 | | | | | | (__| |_) |____| |_) | |  | | (_| | (_| |  __/
 |_| |_| |_|\___| .__/     |_.__/|_|  |_|\__,_|\__, |\___|
                |_|                            |___/
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mcp-bridge <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve [-config PATH] [-demo]  Start the bridge server")
		fmt.Println("  init [PATH]                   Write a sample config file")
		fmt.Println("  version                       Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		err = fmt.Errorf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	demoTools := fs.Bool("demo", false, "register the demo tools, resource, and prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	} else if err := cfg.ApplyEnv(); err != nil {
		return err
	}

	logger := config.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	reg := registry.New(logger)
	reg.Configure(registry.Config{
		ServerName:    cfg.Server.Name,
		ServerVersion: cfg.Server.Version,
		BasePath:      cfg.Server.BasePath,
	})

	for _, tc := range cfg.Tools {
		def, err := tc.Definition()
		if err != nil {
			return err
		}
		reg.Register(def)
	}
	if *demoTools {
		demo.Register(reg)
	}

	dispatcher, err := dispatch.New(dispatch.Config{
		Registry: reg,
		Bridge: bridge.New(bridge.Config{
			Timeout:     cfg.Bridge.Timeout,
			DefaultPort: cfg.Bridge.DefaultPort,
			UserAgent:   "mcp-bridge/" + version,
			Logger:      logger,
		}),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	adapter, err := transport.New(transport.Config{
		Dispatcher: dispatcher,
		Path:       cfg.Server.MCPPath,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	// Non-MCP requests fall through to the host mux.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: adapter.Middleware(mux),
	}

	color.Cyan(banner)
	fmt.Printf("  mcp-bridge %s\n", version)
	fmt.Printf("  MCP endpoint: http://%s%s\n", cfg.Server.HTTPAddr, adapter.Path())
	fmt.Printf("  Tools registered: %d\n\n", len(reg.Tools()))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.HTTPAddr, "mcp_path", adapter.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

const sampleConfig = `# mcp-bridge configuration
server:
  http_addr: ":8080"
  mcp_path: "/mcp"
  name: "my-bridge"
  version: "1.0.0"
  # base_path: "/api/v1"

bridge:
  timeout: "30s"
  default_port: "3000"

logging:
  level: "info"
  format: "text"

# Bridged tools. Calls are forwarded to the REST API addressed by the
# originating request's Host header (default localhost:<default_port>).
tools:
  - name: get_item
    description: "Fetch one item by id"
    method: GET
    path: "/items/:id"
    schema:
      type: object
      properties:
        id:
          type: string
          description: "Item identifier"
      required: [id]
`

func runInit(args []string) error {
	path := "mcp-bridge.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.Green("Wrote %s", path)
	return nil
}
