package mockwire

import (
	"encoding/json"
	"net/http"
	"strings"
)

// RequestContext is the per-call bundle handed to dynamic handlers. It
// is built once per matched request and discarded afterwards; only the
// State reference outlives it.
type RequestContext struct {
	// Method is the request method.
	Method string
	// Path is the request path after base-URL stripping.
	Path string
	// Params holds the path parameters extracted by the pattern,
	// e.g. {"id": "42"} for /users/:id against /users/42.
	Params map[string]string
	// Query holds the query parameters. Repeated keys keep the last
	// value.
	Query map[string]string
	// Headers holds the request headers with lowercased names.
	// Repeated headers are joined with ", ".
	Headers map[string]string
	// Body is the parsed request body: decoded JSON when the payload
	// parses, the raw text otherwise, nil for an empty body.
	Body interface{}
	// Request is the raw request.
	Request *http.Request
	// State is the mocker's shared state store. Mutations persist
	// across calls.
	State *StateStore
}

// newRequestContext builds the context for one matched request. body
// is the already-drained request body.
func newRequestContext(req *http.Request, path string, params map[string]string, body []byte, state *StateStore) *RequestContext {
	query := make(map[string]string)
	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			query[key] = values[len(values)-1]
		}
	}

	headers := make(map[string]string)
	for key, values := range req.Header {
		headers[strings.ToLower(key)] = strings.Join(values, ", ")
	}

	if params == nil {
		params = make(map[string]string)
	}

	return &RequestContext{
		Method:  req.Method,
		Path:    path,
		Params:  params,
		Query:   query,
		Headers: headers,
		Body:    parseBody(body),
		Request: req,
		State:   state,
	}
}

// parseBody decodes a request body best-effort: JSON when it parses,
// raw text otherwise, nil when empty. Parsing is never fatal.
func parseBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err == nil {
		return decoded
	}
	return string(body)
}

// scriptObject converts the context into the plain map handed to
// JavaScript handlers.
func (ctx *RequestContext) scriptObject() map[string]interface{} {
	return map[string]interface{}{
		"method":  ctx.Method,
		"path":    ctx.Path,
		"params":  ctx.Params,
		"query":   ctx.Query,
		"headers": ctx.Headers,
		"body":    ctx.Body,
		"state":   ctx.State.raw(),
	}
}
