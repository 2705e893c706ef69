// ABOUTME: Demo tools, resources, and prompts exercising the custom-handler path.
// ABOUTME: Registered by the serve command when --demo is set.

package demo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/2389/mcp-bridge/internal/registry"
	"github.com/2389/mcp-bridge/internal/schema"
)

// Register adds the demo tools, resource, and prompt to reg. None of them
// go through the REST bridge; they all run in-process.
func Register(reg *registry.Registry) {
	reg.Register(registry.ToolDef{
		Method:      "POST",
		Path:        "/demo/echo",
		Name:        "echo",
		Description: "Echo a message back to the caller",
		InputSchema: schema.Object(map[string]*jsonschema.Schema{
			"message": schema.String("The message to echo"),
		}, "message"),
		Handler: echo,
	})

	reg.Register(registry.ToolDef{
		Method:      "GET",
		Path:        "/demo/time",
		Name:        "current_time",
		Description: "Report the server's current time",
		InputSchema: schema.Object(map[string]*jsonschema.Schema{
			"format": schema.Enum("Time layout", "rfc3339", "unix"),
		}),
		Handler: currentTime,
	})

	reg.Configure(registry.Config{
		Resources: []registry.ResourceDef{
			{
				URI:         "demo://server-info",
				Name:        "Server info",
				Description: "Static information about this bridge",
				MIMEType:    "application/json",
			},
		},
		ResourceHandlers: map[string]registry.ResourceHandler{
			"demo://server-info": serverInfo,
		},
		Prompts: []registry.PromptDef{
			{
				Name:        "summarize",
				Description: "Ask for a summary of the given text",
				Arguments: []registry.PromptArg{
					{Name: "text", Description: "The text to summarize", Required: true},
				},
			},
		},
		PromptHandlers: map[string]registry.PromptHandler{
			"summarize": summarize,
		},
	})
}

func echo(_ context.Context, args map[string]any, _ *http.Request) (any, error) {
	msg, ok := args["message"].(string)
	if !ok {
		return nil, fmt.Errorf("message is required")
	}
	return msg, nil
}

func currentTime(_ context.Context, args map[string]any, _ *http.Request) (any, error) {
	now := time.Now()
	if format, _ := args["format"].(string); format == "unix" {
		return map[string]any{"unix": now.Unix()}, nil
	}
	return map[string]any{"rfc3339": now.Format(time.RFC3339)}, nil
}

func serverInfo(_ context.Context, _ map[string]any) (any, error) {
	return map[string]any{
		"name":    "mcp-bridge demo",
		"started": time.Now().Format(time.RFC3339),
	}, nil
}

func summarize(_ context.Context, args map[string]any) (any, error) {
	text, ok := args["text"].(string)
	if !ok {
		return nil, fmt.Errorf("text is required")
	}
	return "Please summarize the following text:\n\n" + text, nil
}
