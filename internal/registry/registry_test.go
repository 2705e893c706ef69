// ABOUTME: Tests for the definition store including route replacement and config merging.
// ABOUTME: Validates the clear/config asymmetry and duplicate tool name lookup order.

package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

func testTool(name, method, path string) ToolDef {
	return ToolDef{
		Method:      method,
		Path:        path,
		Name:        name,
		Description: name + " description",
	}
}

func TestRegisterAndRoute(t *testing.T) {
	t.Run("returns the registered definition", func(t *testing.T) {
		reg := New(slog.Default())
		def := testTool("get_item", "GET", "/items/:id")
		reg.Register(def)

		got, ok := reg.Route("get_item")
		if !ok {
			t.Fatal("expected route to be found")
		}
		if got.Path != "/items/:id" || got.Method != "GET" {
			t.Errorf("unexpected definition: %+v", got)
		}
	})

	t.Run("unknown name reports not found", func(t *testing.T) {
		reg := New(slog.Default())
		if _, ok := reg.Route("missing"); ok {
			t.Fatal("expected not found")
		}
	})

	t.Run("same route key replaces silently", func(t *testing.T) {
		reg := New(slog.Default())
		reg.Register(testTool("old_name", "GET", "/items"))
		reg.Register(testTool("new_name", "GET", "/items"))

		tools := reg.Tools()
		if len(tools) != 1 {
			t.Fatalf("expected 1 tool after replacement, got %d", len(tools))
		}
		if tools[0].Name != "new_name" {
			t.Errorf("expected replacement to win, got %q", tools[0].Name)
		}
		// The old tool name is unreachable once its route key is replaced.
		if _, ok := reg.Route("old_name"); ok {
			t.Error("expected old_name to be unreachable")
		}
	})

	t.Run("replacement keeps registration order position", func(t *testing.T) {
		reg := New(slog.Default())
		reg.Register(testTool("a", "GET", "/a"))
		reg.Register(testTool("b", "GET", "/b"))
		reg.Register(testTool("a2", "GET", "/a"))

		tools := reg.Tools()
		if len(tools) != 2 {
			t.Fatalf("expected 2 tools, got %d", len(tools))
		}
		if tools[0].Name != "a2" || tools[1].Name != "b" {
			t.Errorf("unexpected order: %q, %q", tools[0].Name, tools[1].Name)
		}
	})

	t.Run("duplicate tool names resolve first match", func(t *testing.T) {
		// Duplicate names are a caller error the store does not reject;
		// lookup returns the earliest registration.
		reg := New(slog.Default())
		reg.Register(testTool("dup", "GET", "/first"))
		reg.Register(testTool("dup", "POST", "/second"))

		got, ok := reg.Route("dup")
		if !ok {
			t.Fatal("expected route to be found")
		}
		if got.Path != "/first" {
			t.Errorf("expected first registration to win, got %q", got.Path)
		}
	})
}

func TestConfigureShallowMerge(t *testing.T) {
	reg := New(slog.Default())

	reg.Configure(Config{ServerName: "server-a"})
	reg.Configure(Config{ServerVersion: "2.0.0"})

	cfg := reg.ConfigSnapshot()
	if cfg.ServerName != "server-a" {
		t.Errorf("expected ServerName to survive second configure, got %q", cfg.ServerName)
	}
	if cfg.ServerVersion != "2.0.0" {
		t.Errorf("expected ServerVersion merged, got %q", cfg.ServerVersion)
	}

	reg.Configure(Config{ServerName: "server-b"})
	cfg = reg.ConfigSnapshot()
	if cfg.ServerName != "server-b" {
		t.Errorf("expected ServerName overwritten, got %q", cfg.ServerName)
	}
	if cfg.ServerVersion != "2.0.0" {
		t.Errorf("expected ServerVersion undisturbed, got %q", cfg.ServerVersion)
	}
}

func TestConfigureReplacesNestedMapsWholesale(t *testing.T) {
	reg := New(slog.Default())

	reg.Configure(Config{
		ResourceHandlers: map[string]ResourceHandler{
			"res://a": func(ctx context.Context, params map[string]any) (any, error) { return "a", nil },
		},
	})
	reg.Configure(Config{
		ResourceHandlers: map[string]ResourceHandler{
			"res://b": func(ctx context.Context, params map[string]any) (any, error) { return "b", nil },
		},
	})

	// The second map fully replaces the first; res://a is gone.
	if _, err := reg.ReadResource(context.Background(), "res://a", nil); err == nil {
		t.Error("expected res://a handler to be replaced away")
	}
	got, err := reg.ReadResource(context.Background(), "res://b", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "b" {
		t.Errorf("expected %q, got %v", "b", got)
	}
}

func TestClearPreservesConfig(t *testing.T) {
	// Regression test: Clear empties routes but must NOT reset config.
	reg := New(slog.Default())
	reg.Configure(Config{ServerName: "keep-me", Resources: []ResourceDef{{URI: "res://x", Name: "x"}}})
	reg.Register(testTool("t", "GET", "/t"))

	reg.Clear()

	if len(reg.Tools()) != 0 {
		t.Errorf("expected no tools after clear, got %d", len(reg.Tools()))
	}
	cfg := reg.ConfigSnapshot()
	if cfg.ServerName != "keep-me" {
		t.Errorf("expected config to survive clear, got %q", cfg.ServerName)
	}
	if len(reg.Resources()) != 1 {
		t.Errorf("expected resources to survive clear, got %d", len(reg.Resources()))
	}
}

func TestReadResource(t *testing.T) {
	t.Run("resolves through handler", func(t *testing.T) {
		reg := New(slog.Default())
		reg.Configure(Config{
			ResourceHandlers: map[string]ResourceHandler{
				"res://data": func(ctx context.Context, params map[string]any) (any, error) {
					return map[string]any{"ok": true}, nil
				},
			},
		})

		got, err := reg.ReadResource(context.Background(), "res://data", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		m, ok := got.(map[string]any)
		if !ok || m["ok"] != true {
			t.Errorf("unexpected result: %v", got)
		}
	})

	t.Run("missing handler", func(t *testing.T) {
		reg := New(slog.Default())
		_, err := reg.ReadResource(context.Background(), "res://missing", nil)
		if !errors.Is(err, ErrNoResourceHandler) {
			t.Fatalf("expected ErrNoResourceHandler, got %v", err)
		}
		want := "no handler for resource: res://missing"
		if err.Error() != want {
			t.Errorf("expected %q, got %q", want, err.Error())
		}
	})
}

func TestGetPrompt(t *testing.T) {
	t.Run("resolves through handler", func(t *testing.T) {
		reg := New(slog.Default())
		reg.Configure(Config{
			PromptHandlers: map[string]PromptHandler{
				"greet": func(ctx context.Context, args map[string]any) (any, error) {
					return "hello " + args["name"].(string), nil
				},
			},
		})

		got, err := reg.GetPrompt(context.Background(), "greet", map[string]any{"name": "world"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "hello world" {
			t.Errorf("unexpected result: %v", got)
		}
	})

	t.Run("missing handler", func(t *testing.T) {
		reg := New(slog.Default())
		_, err := reg.GetPrompt(context.Background(), "missing", nil)
		if !errors.Is(err, ErrNoPromptHandler) {
			t.Fatalf("expected ErrNoPromptHandler, got %v", err)
		}
	})
}

func TestConcurrentReads(t *testing.T) {
	reg := New(slog.Default())
	for _, name := range []string{"a", "b", "c"} {
		reg.Register(testTool(name, "GET", "/"+name))
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, ok := reg.Route("b"); !ok {
					t.Error("expected route b")
					return
				}
				if got := len(reg.Tools()); got != 3 {
					t.Errorf("expected 3 tools, got %d", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
