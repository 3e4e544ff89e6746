// Package invoker turns an operation descriptor plus an argument mapping
// into a live HTTP call and a normalized invocation result.
//
// The invoker is the boundary that converts every failure mode into data:
// backend errors, transport errors and timeouts all come back as a
// domain.InvocationResult, never as a propagated fault. It performs at most
// one HTTP attempt per invocation and holds no state between calls beyond
// the connection pool of its http.Client.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/forno/internal/logging"
	"github.com/aretw0/forno/pkg/domain"
)

// DefaultTimeout bounds a single invocation unless the caller overrides it.
const DefaultTimeout = 30 * time.Second

// Invoker executes operation descriptors against an HTTP backend.
// Safe for concurrent use; each invocation owns its request/response pair.
type Invoker struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the Invoker.
type Option func(*Invoker)

// WithHTTPClient injects a custom client (e.g. for connection pooling or tests).
func WithHTTPClient(client *http.Client) Option {
	return func(i *Invoker) {
		i.client = client
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Invoker) {
		i.timeout = d
	}
}

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		i.logger = logger
	}
}

// New creates an Invoker with the default timeout.
func New(opts ...Option) *Invoker {
	inv := &Invoker{
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke executes one descriptor against baseURL with the given arguments.
//
// Path arguments are substituted into the template, query arguments become
// the query string (nil or absent values are omitted entirely) and body
// arguments form a JSON object payload for methods that carry a body.
// Missing a required path argument is a caller error and issues no request.
func (inv *Invoker) Invoke(ctx context.Context, desc domain.OperationDescriptor, baseURL string, args map[string]any) domain.InvocationResult {
	target, result, ok := inv.buildURL(desc, baseURL, args)
	if !ok {
		return result
	}

	// The deadline travels with the request context so an abandoned caller
	// context aborts the in-flight request too.
	ctx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	body, hasBody := buildBody(desc, args)
	req, err := newRequest(ctx, desc.Method, target, body, hasBody)
	if err != nil {
		return domain.TransportFailure(err)
	}

	inv.logger.Debug("invoking tool",
		"tool", desc.ToolName,
		"method", desc.Method,
		"url", target,
	)

	resp, err := inv.client.Do(req)
	if err != nil {
		return domain.TransportFailure(err)
	}
	defer resp.Body.Close()

	return normalize(resp)
}

// buildURL substitutes path parameters and appends the query string.
// The third return value is false when the result carries a caller failure.
func (inv *Invoker) buildURL(desc domain.OperationDescriptor, baseURL string, args map[string]any) (string, domain.InvocationResult, bool) {
	path := desc.PathTemplate
	query := url.Values{}

	for _, p := range desc.Parameters {
		value, present := args[p.Name]
		switch p.Location {
		case domain.LocationPath:
			if !present || value == nil {
				return "", domain.CallerFailuref("missing required path parameter '%s'", p.Name), false
			}
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(stringify(value)))
		case domain.LocationQuery:
			if present && value != nil {
				query.Set(p.Name, stringify(value))
			}
		}
	}

	target := strings.TrimRight(baseURL, "/") + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target, domain.InvocationResult{}, true
}

// buildBody assembles the JSON object for body-located arguments, dropping
// nil and absent values instead of sending explicit nulls. The second
// return value reports whether the method should carry a body at all:
// POST and PUT always do (possibly an empty object), PATCH only when body
// parameters exist, everything else is bodyless.
func buildBody(desc domain.OperationDescriptor, args map[string]any) ([]byte, bool) {
	switch desc.Method {
	case http.MethodPost, http.MethodPut:
		// fall through to payload assembly
	case http.MethodPatch:
		if !desc.HasBodyParams() {
			return nil, false
		}
	default:
		return nil, false
	}

	payload := make(map[string]any)
	for _, p := range desc.Parameters {
		if p.Location != domain.LocationBody {
			continue
		}
		if value, present := args[p.Name]; present && value != nil {
			payload[p.Name] = value
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		// map[string]any with JSON-decoded values always marshals.
		return []byte("{}"), true
	}
	return data, true
}

func newRequest(ctx context.Context, method, target string, body []byte, hasBody bool) (*http.Request, error) {
	var reader io.Reader
	if hasBody {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// normalize converts an HTTP response into the uniform result shape.
func normalize(resp *http.Response) domain.InvocationResult {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.TransportFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		return domain.HTTPStatusFailure(resp.StatusCode, detail)
	}

	var payload any
	if len(bytes.TrimSpace(raw)) == 0 {
		return domain.Success(nil)
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.TransportFailure(fmt.Errorf("malformed response body: %w", err))
	}
	return domain.Success(payload)
}

// stringify renders an argument for a path segment or query value.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
