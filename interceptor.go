package mockwire

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// Interceptor is the entry point every outgoing request passes
// through. It implements http.RoundTripper: enabled, it resolves the
// request against the registry and serves the winning mock; disabled,
// or when nothing matches, it delegates to the real transport it
// captured at construction.
type Interceptor struct {
	real     http.RoundTripper
	registry *Registry
	state    *StateStore
	logger   *util.Logger
	matcher  *requestMatcher
	resolver *responseResolver
	builder  *responseBuilder

	mu       sync.RWMutex
	cfg      Config
	enabled  bool
	requests []RecordedRequest
}

// newInterceptor wires an interceptor around the real transport. A nil
// transport falls back to http.DefaultTransport; having neither is a
// configuration error.
func newInterceptor(real http.RoundTripper, cfg Config, logger *util.Logger, registry *Registry, state *StateStore) (*Interceptor, error) {
	if real == nil {
		real = http.DefaultTransport
	}
	if real == nil {
		return nil, util.NewConfigurationError("no real transport available to fall through to")
	}

	cfg.BaseURL = normalizeBaseURL(cfg.BaseURL)

	return &Interceptor{
		real:     real,
		registry: registry,
		state:    state,
		logger:   logger,
		matcher:  &requestMatcher{logger: logger},
		resolver: &responseResolver{logger: logger},
		builder:  &responseBuilder{logger: logger},
		cfg:      cfg,
		enabled:  true,
	}, nil
}

// RoundTrip implements http.RoundTripper.
func (ic *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if !ic.Enabled() {
		return ic.real.RoundTrip(req)
	}

	cfg := ic.Config()
	path := requestPath(req, cfg)

	resp, err, matched := ic.respond(req, path, cfg)
	if !matched {
		if cfg.LogRequests {
			ic.logger.Debugf("%s %s: no mock applies, passing through", req.Method, req.URL)
		}
		return ic.real.RoundTrip(req)
	}
	return resp, err
}

// respond runs the match → rank → resolve → build pipeline. matched is
// false when no definition applies and the caller must fall through.
func (ic *Interceptor) respond(req *http.Request, path string, cfg Config) (resp *http.Response, err error, matched bool) {
	defs := ic.registry.All()

	sameMethod := defs[:0:0]
	for _, def := range defs {
		if def.Method == req.Method {
			sameMethod = append(sameMethod, def)
		}
	}
	if len(sameMethod) == 0 {
		return nil, nil, false
	}

	// The body is drained once, up front, so both matching and the
	// handler see it; the request gets a replayable copy back so a
	// fall-through still carries the original payload.
	body, err := drainBody(req)
	if err != nil {
		return nil, err, true
	}

	var candidates []candidate
	for _, def := range sameMethod {
		if params, ok := ic.matcher.matches(def, req, path, body); ok {
			candidates = append(candidates, candidate{def: def, params: params})
		}
	}

	winner, ok := pickWinner(candidates, cfg)
	if !ok {
		return nil, nil, false
	}
	def := winner.def

	if cfg.LogRequests {
		ic.logger.Infof("%s %s matched %s %s", req.Method, req.URL, def.Method, def.pattern.raw)
	}
	if cfg.RecordRequests {
		ic.record(req, path, def.pattern.raw)
	}

	if err := ic.builder.wait(req.Context(), def.delayIn(cfg)); err != nil {
		return nil, err, true
	}

	if def.NetworkError != "" {
		if cfg.LogRequests {
			ic.logger.Infof("%s %s failing with simulated fault %q", req.Method, req.URL, def.NetworkError)
		}
		return nil, faultFor(def.NetworkError, req.URL.String()), true
	}

	rctx := newRequestContext(req, path, winner.params, body, ic.state)
	resolved, err := ic.resolver.resolve(def, rctx)
	if err != nil {
		return nil, err, true
	}

	resp, err = ic.builder.assemble(def, cfg, req, resolved)
	return resp, err, true
}

// Enable turns interception on. Enabled is the initial state.
func (ic *Interceptor) Enable() {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.enabled = true
}

// Disable turns interception off; every call passes straight through
// to the real transport, with no matching and no logging.
func (ic *Interceptor) Disable() {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.enabled = false
}

// Enabled reports the toggle state.
func (ic *Interceptor) Enabled() bool {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.enabled
}

// Config returns the current configuration snapshot.
func (ic *Interceptor) Config() Config {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.cfg
}

// UpdateConfig merges the non-zero fields of patch into the
// configuration. The change takes effect on the next matched request.
func (ic *Interceptor) UpdateConfig(patch Config) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.cfg = ic.cfg.merge(patch)
}

// record appends to the request journal.
func (ic *Interceptor) record(req *http.Request, path, matchedPath string) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.requests = append(ic.requests, RecordedRequest{
		Method:      req.Method,
		URL:         req.URL.String(),
		Path:        path,
		MatchedPath: matchedPath,
		Timestamp:   time.Now(),
	})
}

// Requests returns a copy of the request journal.
func (ic *Interceptor) Requests() []RecordedRequest {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	out := make([]RecordedRequest, len(ic.requests))
	copy(out, ic.requests)
	return out
}

// ResetRequests clears the request journal.
func (ic *Interceptor) ResetRequests() {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.requests = nil
}

// requestPath resolves the path to match against, stripping the
// configured base URL from the request URL first.
func requestPath(req *http.Request, cfg Config) string {
	if cfg.BaseURL != "" {
		full := req.URL.String()
		if strings.HasPrefix(full, cfg.BaseURL) {
			rest := full[len(cfg.BaseURL):]
			if i := strings.IndexAny(rest, "?#"); i >= 0 {
				rest = rest[:i]
			}
			return normalizePath(rest)
		}
		if base, err := url.Parse(cfg.BaseURL); err == nil && base.Path != "" {
			if strings.HasPrefix(req.URL.Path, base.Path) {
				return normalizePath(strings.TrimPrefix(req.URL.Path, base.Path))
			}
		}
	}
	return normalizePath(req.URL.Path)
}

// drainBody reads the request body once and hands the request a
// replayable copy. Cancellation during the read surfaces as the
// request's context error.
func drainBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
