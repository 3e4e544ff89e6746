package domain

import (
	"encoding/json"
	"fmt"
)

// FailureKind classifies why an invocation did not produce a payload.
type FailureKind string

const (
	// FailureHTTPStatus means the backend answered with a non-2xx status.
	FailureHTTPStatus FailureKind = "http_status"
	// FailureTransport covers connection, timeout and body-parse failures.
	FailureTransport FailureKind = "transport"
	// FailureCaller means the call itself was malformed (unknown tool,
	// missing required argument). No request was issued.
	FailureCaller FailureKind = "caller"
)

// InvocationResult is the outcome of a single tool call. Every failure mode
// of an invocation is converted into a result value; callers never see a
// propagated fault. A result always renders to a single JSON text block.
type InvocationResult struct {
	Ok         bool        `json:"ok"`
	Payload    any         `json:"payload,omitempty"`
	Kind       FailureKind `json:"kind,omitempty"`
	Detail     string      `json:"detail,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
}

// Success wraps a parsed JSON payload.
func Success(payload any) InvocationResult {
	return InvocationResult{Ok: true, Payload: payload}
}

// HTTPStatusFailure records a non-2xx backend response.
func HTTPStatusFailure(statusCode int, detail string) InvocationResult {
	return InvocationResult{Ok: false, Kind: FailureHTTPStatus, StatusCode: statusCode, Detail: detail}
}

// TransportFailure records a network-level or parse failure.
func TransportFailure(err error) InvocationResult {
	return InvocationResult{Ok: false, Kind: FailureTransport, Detail: err.Error()}
}

// CallerFailure records a malformed call (unknown tool, missing argument).
func CallerFailure(detail string) InvocationResult {
	return InvocationResult{Ok: false, Kind: FailureCaller, Detail: detail}
}

// CallerFailuref is CallerFailure with fmt semantics.
func CallerFailuref(format string, args ...any) InvocationResult {
	return CallerFailure(fmt.Sprintf(format, args...))
}

// Render serializes the result to the JSON contract tools honor toward
// their caller:
//
//	success:     the backend payload, pretty-printed
//	HTTP error:  {"error": "...", "status_code": 404}
//	other error: {"error": "..."}
func (r InvocationResult) Render() string {
	if r.Ok {
		data, err := json.MarshalIndent(r.Payload, "", "  ")
		if err != nil {
			return renderError(fmt.Sprintf("unserializable payload: %v", err), 0)
		}
		return string(data)
	}
	return renderError(r.Detail, r.StatusCode)
}

func renderError(detail string, statusCode int) string {
	body := map[string]any{"error": detail}
	if statusCode != 0 {
		body["status_code"] = statusCode
	}
	data, _ := json.Marshal(body)
	return string(data)
}
