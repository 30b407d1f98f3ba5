package mockwire

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// LogEntry is a captured log line, re-exported for admin surfaces.
type LogEntry = util.LogEntry

// Mocker owns one interception pipeline: a registry of endpoint
// definitions, a shared state store, a configuration, and the
// intercepting transport. Instances are independent; nothing is shared
// between two mockers.
type Mocker struct {
	registry    *Registry
	state       *StateStore
	interceptor *Interceptor
	logger      *util.Logger

	installMu sync.Mutex
	installed bool
	saved     http.RoundTripper
}

// Option configures a Mocker at construction.
type Option func(*mockerOptions)

type mockerOptions struct {
	cfg       Config
	transport http.RoundTripper
}

// WithConfig sets the initial configuration.
func WithConfig(cfg Config) Option {
	return func(o *mockerOptions) { o.cfg = cfg }
}

// WithTransport sets the real transport to fall through to. Defaults
// to http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *mockerOptions) { o.transport = rt }
}

// New creates a Mocker. It fails with a configuration error when no
// real transport can be resolved.
func New(opts ...Option) (*Mocker, error) {
	var o mockerOptions
	for _, opt := range opts {
		opt(&o)
	}

	var logger *util.Logger
	if o.cfg.LogLevel != "" {
		logger = util.NewLogger(o.cfg.LogLevel).WithScope("mockwire")
	} else {
		logger = util.NewNopLogger()
	}

	m := &Mocker{
		state:  NewStateStore(),
		logger: logger,
	}
	m.registry = NewRegistry(func() Config { return m.interceptor.Config() })

	interceptor, err := newInterceptor(o.transport, o.cfg, logger, m.registry, m.state)
	if err != nil {
		return nil, err
	}
	m.interceptor = interceptor

	return m, nil
}

// MustNew is New for contexts where construction cannot fail, e.g.
// tests supplying their own transport.
func MustNew(opts ...Option) *Mocker {
	m, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Register validates and stores a definition.
func (m *Mocker) Register(def Definition) error {
	return m.registry.Add(&def)
}

// On starts a fluent registration for an arbitrary method.
func (m *Mocker) On(method, path string) *EndpointBuilder {
	return &EndpointBuilder{
		mocker: m,
		def:    Definition{Method: method, Path: path},
	}
}

// OnGet starts a fluent registration for GET path.
func (m *Mocker) OnGet(path string) *EndpointBuilder { return m.On(http.MethodGet, path) }

// OnPost starts a fluent registration for POST path.
func (m *Mocker) OnPost(path string) *EndpointBuilder { return m.On(http.MethodPost, path) }

// OnPut starts a fluent registration for PUT path.
func (m *Mocker) OnPut(path string) *EndpointBuilder { return m.On(http.MethodPut, path) }

// OnPatch starts a fluent registration for PATCH path.
func (m *Mocker) OnPatch(path string) *EndpointBuilder { return m.On(http.MethodPatch, path) }

// OnDelete starts a fluent registration for DELETE path.
func (m *Mocker) OnDelete(path string) *EndpointBuilder { return m.On(http.MethodDelete, path) }

// Enable turns interception on.
func (m *Mocker) Enable() { m.interceptor.Enable() }

// Disable turns interception off; requests pass through unmodified.
func (m *Mocker) Disable() { m.interceptor.Disable() }

// Enabled reports whether interception is on.
func (m *Mocker) Enabled() bool { return m.interceptor.Enabled() }

// RemoveEndpoint deletes every definition registered under the exact
// method and pattern string.
func (m *Mocker) RemoveEndpoint(method, path string) error {
	return m.registry.Remove(method, path)
}

// ClearAll empties the registry and resets the shared state. No
// partial state survives: both are empty by the time it returns.
func (m *Mocker) ClearAll() {
	m.registry.Clear()
	m.state.Reset()
}

// Endpoints describes the registered definitions.
func (m *Mocker) Endpoints() []EndpointInfo {
	cfg := m.interceptor.Config()
	defs := m.registry.All()
	out := make([]EndpointInfo, 0, len(defs))
	for _, def := range defs {
		out = append(out, EndpointInfo{
			Method:      def.Method,
			Path:        def.pattern.raw,
			Priority:    def.priorityIn(cfg),
			Specificity: def.pattern.specificity,
			Fault:       def.NetworkError,
		})
	}
	return out
}

// Definitions returns copies of every registered definition in
// registration order. Function-valued fields come back as registered;
// callers that serialize should skip them.
func (m *Mocker) Definitions() []Definition {
	defs := m.registry.All()
	out := make([]Definition, 0, len(defs))
	for _, def := range defs {
		out = append(out, *def)
	}
	return out
}

// SetState stores a value in the shared state.
func (m *Mocker) SetState(key string, value interface{}) { m.state.Set(key, value) }

// AllState returns a copy of the shared state mapping.
func (m *Mocker) AllState() map[string]interface{} { return m.state.All() }

// ResetState empties the shared state.
func (m *Mocker) ResetState() { m.state.Reset() }

// State returns the shared state store itself.
func (m *Mocker) State() *StateStore { return m.state }

// UpdateConfig merges the non-zero fields of patch into the
// configuration; header maps merge key by key.
func (m *Mocker) UpdateConfig(patch Config) { m.interceptor.UpdateConfig(patch) }

// Config returns the current configuration.
func (m *Mocker) Config() Config { return m.interceptor.Config() }

// Requests returns the journal of intercepted requests recorded while
// Config.RecordRequests was on.
func (m *Mocker) Requests() []RecordedRequest { return m.interceptor.Requests() }

// ResetRequests clears the request journal.
func (m *Mocker) ResetRequests() { m.interceptor.ResetRequests() }

// LogEntries returns the captured log lines.
func (m *Mocker) LogEntries() []LogEntry { return m.logger.Entries() }

// Transport returns the intercepting round tripper, for wiring into a
// custom http.Client.
func (m *Mocker) Transport() http.RoundTripper { return m.interceptor }

// Client returns an http.Client whose requests pass through the
// interceptor.
func (m *Mocker) Client() *http.Client {
	return &http.Client{Transport: m.interceptor}
}

// Install swaps http.DefaultTransport for the interceptor. The
// pre-existing transport is saved once, on the first install, and
// repeated installs never overwrite that saved reference. When several
// mockers install themselves the last writer wins; that is the
// documented contract, not an accident.
func (m *Mocker) Install() {
	m.installMu.Lock()
	defer m.installMu.Unlock()
	if m.installed {
		return
	}
	m.saved = http.DefaultTransport
	http.DefaultTransport = m.interceptor
	m.installed = true
}

// Uninstall restores http.DefaultTransport to exactly the reference
// saved by Install. It is idempotent.
func (m *Mocker) Uninstall() {
	m.installMu.Lock()
	defer m.installMu.Unlock()
	if !m.installed {
		return
	}
	http.DefaultTransport = m.saved
	m.saved = nil
	m.installed = false
}

// ServeHTTP serves mocks over a real listener, for dev-server use.
// Unmatched requests answer 404 rather than falling through to a
// transport; simulated faults and handler failures answer 502 with the
// error in the body, since a server cannot fail a connection the way a
// client-side transport can.
func (m *Mocker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := m.interceptor.Config()
	path := requestPath(r, cfg)

	resp, err, matched := m.interceptor.respond(r, path, cfg)
	if !matched {
		writeJSONError(w, http.StatusNotFound, "no such endpoint", r.Method+" "+path)
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, "endpoint failed", err.Error())
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]interface{}{
			{"code": code, "message": message},
		},
	})
}
