// ABOUTME: Translates tool-call arguments into one outbound HTTP request against the tool's REST route.
// ABOUTME: Handles path-parameter substitution, query-vs-body placement, and response normalization.

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/2389/mcp-bridge/internal/registry"
)

// DefaultTimeout bounds the outbound HTTP call. The bridged endpoint is
// expected to be a local or near-local REST API, so a generous but finite
// timeout applies when the config does not override it.
const DefaultTimeout = 30 * time.Second

// DefaultPort is the assumed port of the bridged REST API when the
// originating request carries no Host header.
const DefaultPort = "3000"

// pathParamRe matches :name path-parameter tokens in a route template.
var pathParamRe = regexp.MustCompile(`:([A-Za-z0-9_]+)`)

// StatusError reports a non-success HTTP status from the bridged endpoint,
// carrying the status code and the response body verbatim.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// Config contains configuration options for the Bridge.
type Config struct {
	Timeout     time.Duration
	DefaultPort string
	UserAgent   string
	Logger      *slog.Logger
}

// Bridge executes bridged tool calls as single outbound HTTP requests.
// Tools with a custom handler never reach the bridge; the dispatcher
// selects the execution strategy at lookup time.
type Bridge struct {
	client      *http.Client
	defaultPort string
	userAgent   string
	logger      *slog.Logger
}

// New creates a Bridge with the given configuration.
func New(cfg Config) *Bridge {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	port := cfg.DefaultPort
	if port == "" {
		port = DefaultPort
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "mcp-bridge/1.0"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		client:      &http.Client{Timeout: timeout},
		defaultPort: port,
		userAgent:   ua,
		logger:      logger,
	}
}

// Call executes one outbound HTTP request for def with the given arguments.
//
// Path parameters are substituted into a working copy of the route template;
// the set of path-consumed argument keys is re-derived from the original
// template so a single definition works regardless of argument order.
// Remaining arguments go to the query string for GET (and any other verb
// without a body) or to a JSON body for POST/PUT/PATCH. Only the
// Authorization header of the originating request is forwarded. orig may be
// nil, in which case scheme and host fall back to defaults.
func (b *Bridge) Call(ctx context.Context, def registry.ToolDef, args map[string]any, orig *http.Request) (any, error) {
	target := b.buildBaseURL(orig) + b.buildPath(def.Path, args)

	verb := strings.ToUpper(def.Method)
	var body io.Reader
	remaining := remainingArgs(def.Path, args)

	hasBody := verb == http.MethodPost || verb == http.MethodPut || verb == http.MethodPatch
	if hasBody {
		if len(remaining) > 0 {
			encoded, err := json.Marshal(remaining)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}
			body = bytes.NewReader(encoded)
		}
	} else {
		target = appendQuery(target, remaining)
	}

	req, err := http.NewRequestWithContext(ctx, verb, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("User-Agent", b.userAgent)
	if hasBody {
		// Always set, even when no body is sent.
		req.Header.Set("Content-Type", "application/json")
	}
	if orig != nil {
		if auth := orig.Header.Get("Authorization"); auth != "" {
			req.Header.Set("Authorization", auth)
		}
	}

	b.logger.Debug("→ bridged request",
		"method", verb,
		"url", target,
		"tool_name", def.Name,
	)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		b.logger.Warn("bridged endpoint returned error status",
			"status", resp.StatusCode,
			"tool_name", def.Name,
		)
		return nil, &StatusError{Status: resp.StatusCode, Body: string(raw)}
	}

	b.logger.Debug("← bridged response",
		"status", resp.StatusCode,
		"tool_name", def.Name,
		"bytes", len(raw),
	)

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("decoding response body: %w", err)
		}
		return decoded, nil
	}
	return string(raw), nil
}

// buildBaseURL derives scheme and host from the originating request's
// forwarded-protocol and Host headers, defaulting to the local REST API.
func (b *Bridge) buildBaseURL(orig *http.Request) string {
	scheme := "http"
	host := "localhost:" + b.defaultPort
	if orig != nil {
		if proto := orig.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		if orig.Host != "" {
			host = orig.Host
		}
	}
	return scheme + "://" + host
}

// buildPath substitutes :key tokens in the route template with stringified,
// path-escaped argument values. Matching is per whole token, so an argument
// key that prefixes a longer token leaves that token alone. Tokens with no
// matching argument stay literal. The argument set itself is untouched;
// exclusion of path-consumed keys happens separately against the original
// template.
func (b *Bridge) buildPath(template string, args map[string]any) string {
	return pathParamRe.ReplaceAllStringFunc(template, func(token string) string {
		if value, ok := args[token[1:]]; ok {
			return url.PathEscape(stringify(value))
		}
		return token
	})
}

// remainingArgs returns the arguments that were not consumed by path
// parameters, scanning the original template for the authoritative set.
func remainingArgs(template string, args map[string]any) map[string]any {
	consumed := make(map[string]struct{})
	for _, m := range pathParamRe.FindAllStringSubmatch(template, -1) {
		consumed[m[1]] = struct{}{}
	}

	remaining := make(map[string]any, len(args))
	for key, value := range args {
		if _, ok := consumed[key]; ok {
			continue
		}
		remaining[key] = value
	}
	return remaining
}

// appendQuery appends the defined (non-nil) remaining arguments as query
// parameters, honoring a template that already carries a query string.
func appendQuery(target string, remaining map[string]any) string {
	values := url.Values{}
	for key, value := range remaining {
		if value == nil {
			continue
		}
		values.Set(key, stringify(value))
	}
	if len(values) == 0 {
		return target
	}

	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + values.Encode()
}

// stringify renders an argument value for path or query placement.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
