package mockwire

import (
	"net/http"
	"time"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// HandlerFunc computes a response for a matched request. The returned
// value may be a plain payload (JSON-serialized into the body), a
// *Reply to override status or headers, or a fully formed
// *http.Response which is returned to the caller untouched. A non-nil
// error fails the outbound call itself rather than producing an HTTP
// error response, the same way a real network failure would.
type HandlerFunc func(ctx *RequestContext) (interface{}, error)

// Reply carries a payload together with status and header overrides.
// Handlers and response functions return it when a bare payload is not
// enough; a payload that merely contains a "data" field is never
// mistaken for one.
type Reply struct {
	Data    interface{}       `json:"data"`
	Status  int               `json:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Network fault labels understood by Definition.NetworkError. Any
// other non-empty label produces a generic transport failure.
const (
	FaultTimeout           = "timeout"
	FaultConnectionRefused = "connection_refused"
	FaultAbort             = "abort"
)

// Definition is the unit of registration: it maps a method and path
// pattern to a response source plus matching constraints and response
// behaviors.
//
// At most one response source may be set: Response (a literal value),
// ResponseFunc (a zero-argument producer), Handler (a request-context
// consuming function) or Script (a JavaScript function source). A
// definition with no response source answers 200 with an empty body.
type Definition struct {
	// Method is the HTTP method, e.g. "GET". Required.
	Method string `json:"method"`
	// Path is the pattern to match, with :name parameter segments,
	// e.g. "/users/:id". Required.
	Path string `json:"path"`

	// Response is a literal response value.
	Response interface{} `json:"response,omitempty"`
	// ResponseFunc produces the response value per request.
	ResponseFunc func() (interface{}, error) `json:"-"`
	// Handler computes the response from the request context.
	Handler HandlerFunc `json:"-"`
	// Script is a JavaScript function source, (ctx) => value, used in
	// place of a Go handler. See the resolver for the ctx shape.
	Script string `json:"script,omitempty"`

	// Status is the response status code. Zero means 200, or the
	// status carried by the resolved Reply.
	Status int `json:"status,omitempty"`
	// Headers are response headers for this definition, overlaid on
	// the configured default headers.
	Headers map[string]string `json:"headers,omitempty"`
	// Delay suspends response delivery to simulate latency. Zero
	// means the configured default delay.
	Delay time.Duration `json:"delay,omitempty"`
	// Priority breaks ties between definitions matching the same
	// request; higher wins. Zero means the configured default.
	Priority int `json:"priority,omitempty"`

	// Query requires exact query parameter values for the definition
	// to apply.
	Query map[string]string `json:"query,omitempty"`
	// MatchHeaders requires exact request header values. Keys are
	// case-insensitive.
	MatchHeaders map[string]string `json:"matchHeaders,omitempty"`
	// Matcher is a custom predicate over the raw request. A panic
	// inside the predicate counts as no match.
	Matcher func(*http.Request) bool `json:"-"`
	// BodyJSONPath requires JSONPath selections over a JSON request
	// body to equal the given values.
	BodyJSONPath map[string]string `json:"bodyJSONPath,omitempty"`
	// BodyXPath requires XPath selections over an XML request body to
	// equal the given values.
	BodyXPath map[string]string `json:"bodyXPath,omitempty"`

	// NetworkError, when set, fails every matched call with the
	// labeled transport fault instead of producing a response.
	NetworkError string `json:"networkError,omitempty"`

	pattern *pathPattern
	seq     int
}

// validate checks the registration invariants and compiles the path
// pattern.
func (d *Definition) validate() error {
	if d.Method == "" {
		return util.NewValidationError("endpoint method is required", d.Path)
	}
	if d.Path == "" {
		return util.NewValidationError("endpoint path is required", d.Method)
	}

	sources := 0
	if d.Response != nil {
		sources++
	}
	if d.ResponseFunc != nil {
		sources++
	}
	if d.Handler != nil {
		sources++
	}
	if d.Script != "" {
		sources++
	}
	if sources > 1 {
		return util.NewValidationError("endpoint declares more than one response source", d.Method+" "+d.Path)
	}

	pattern, err := compilePattern(d.Path)
	if err != nil {
		return err
	}
	d.pattern = pattern
	return nil
}

// priorityIn resolves the effective priority under the given config.
func (d *Definition) priorityIn(cfg Config) int {
	if d.Priority != 0 {
		return d.Priority
	}
	return cfg.DefaultPriority
}

// delayIn resolves the effective delay under the given config.
func (d *Definition) delayIn(cfg Config) time.Duration {
	if d.Delay != 0 {
		return d.Delay
	}
	return cfg.DefaultDelay
}

// Config holds per-mocker settings. All fields are optional.
type Config struct {
	// BaseURL is stripped from incoming request URLs before path
	// matching, letting patterns stay relative. Trailing slashes are
	// removed when the config is applied.
	BaseURL string `json:"baseURL,omitempty"`
	// DefaultDelay applies to definitions that declare no delay of
	// their own.
	DefaultDelay time.Duration `json:"defaultDelay,omitempty"`
	// DefaultHeaders are merged under per-definition and per-reply
	// headers.
	DefaultHeaders map[string]string `json:"defaultHeaders,omitempty"`
	// DefaultPriority applies to definitions that declare none.
	DefaultPriority int `json:"defaultPriority,omitempty"`
	// LogLevel controls the mocker's logger ("debug", "info", "warn",
	// "error"). Empty disables logging.
	LogLevel string `json:"logLevel,omitempty"`
	// LogRequests logs every intercepted request and its outcome.
	LogRequests bool `json:"logRequests,omitempty"`
	// RecordRequests keeps an in-memory journal of intercepted
	// requests, readable via Mocker.Requests.
	RecordRequests bool `json:"recordRequests,omitempty"`
}

// merge overlays the non-zero fields of patch onto c. Header maps are
// merged key by key rather than replaced.
func (c Config) merge(patch Config) Config {
	out := c
	if patch.BaseURL != "" {
		out.BaseURL = normalizeBaseURL(patch.BaseURL)
	}
	if patch.DefaultDelay != 0 {
		out.DefaultDelay = patch.DefaultDelay
	}
	if len(patch.DefaultHeaders) > 0 {
		out.DefaultHeaders = util.MergeHeaders(c.DefaultHeaders, patch.DefaultHeaders)
	}
	if patch.DefaultPriority != 0 {
		out.DefaultPriority = patch.DefaultPriority
	}
	if patch.LogLevel != "" {
		out.LogLevel = patch.LogLevel
	}
	if patch.LogRequests {
		out.LogRequests = true
	}
	if patch.RecordRequests {
		out.RecordRequests = true
	}
	return out
}

// EndpointInfo describes a registered definition for inspection.
type EndpointInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Priority    int    `json:"priority"`
	Specificity int    `json:"specificity"`
	Fault       string `json:"fault,omitempty"`
}

// RecordedRequest is one entry in the request journal.
type RecordedRequest struct {
	Method      string    `json:"method"`
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	MatchedPath string    `json:"matchedPath,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
