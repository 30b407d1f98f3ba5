package mockwire

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport stands in for the real network. Every call that falls
// through answers 599 so tests can tell mocks from passthroughs.
type stubTransport struct {
	mu    sync.Mutex
	calls []*http.Request
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	return &http.Response{
		StatusCode: 599,
		Status:     "599 passthrough",
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("passthrough")),
		Request:    req,
	}, nil
}

func (s *stubTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestMocker(t *testing.T, opts ...Option) (*Mocker, *stubTransport) {
	t.Helper()
	stub := &stubTransport{}
	m, err := New(append([]Option{WithTransport(stub)}, opts...)...)
	require.NoError(t, err)
	return m, stub
}

func get(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, into interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestMocker_StaticResponse(t *testing.T) {
	m, stub := newTestMocker(t)
	m.OnGet("/users").Reply([]map[string]string{{"name": "ada"}}).MustRegister()

	resp := get(t, m.Client(), "http://api.test/users")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var users []map[string]string
	decodeJSON(t, resp, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "ada", users[0]["name"])
	assert.Zero(t, stub.count(), "a matched request never reaches the transport")
}

func TestMocker_PathParams(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/users/:userId/posts/:postId").
		Handle(func(ctx *RequestContext) (interface{}, error) {
			return map[string]string{
				"user": ctx.Params["userId"],
				"post": ctx.Params["postId"],
			}, nil
		}).
		MustRegister()

	resp := get(t, m.Client(), "http://api.test/users/7/posts/99")
	var got map[string]string
	decodeJSON(t, resp, &got)
	assert.Equal(t, "7", got["user"])
	assert.Equal(t, "99", got["post"])
}

func TestMocker_UnmatchedFallsThrough(t *testing.T) {
	m, stub := newTestMocker(t)
	m.OnGet("/users").Reply("ok").MustRegister()

	resp := get(t, m.Client(), "http://api.test/accounts")
	resp.Body.Close()
	assert.Equal(t, 599, resp.StatusCode)
	assert.Equal(t, 1, stub.count())
}

func TestMocker_FallThroughKeepsRequestBody(t *testing.T) {
	m, stub := newTestMocker(t)
	// A POST definition forces body draining during matching, but the
	// body constraint rejects this payload.
	m.OnPost("/orders").MatchJSONPath(map[string]string{"$.sku": "A-100"}).Reply("ok").MustRegister()

	resp, err := m.Client().Post("http://api.test/orders", "application/json",
		bytes.NewReader([]byte(`{"sku":"B-200"}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 599, resp.StatusCode)

	require.Equal(t, 1, stub.count())
	body, err := io.ReadAll(stub.calls[0].Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sku":"B-200"}`, string(body), "the transport sees the original payload")
}

func TestMocker_PriorityWins(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/users").Reply("low").Priority(1).MustRegister()
	m.OnGet("/users").Reply("high").Priority(10).MustRegister()

	resp := get(t, m.Client(), "http://api.test/users")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "high", string(body))
}

func TestMocker_SpecificityBreaksTies(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/users/:id").Reply("by id").MustRegister()
	m.OnGet("/users/me").Reply("me").MustRegister()

	resp := get(t, m.Client(), "http://api.test/users/me")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "me", string(body))

	resp = get(t, m.Client(), "http://api.test/users/42")
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "by id", string(body))
}

func TestMocker_QueryAndHeaderMatching(t *testing.T) {
	m, stub := newTestMocker(t)
	m.OnGet("/search").
		MatchQuery(map[string]string{"q": "golang"}).
		MatchHeaders(map[string]string{"X-Tenant": "acme"}).
		Reply("found").
		MustRegister()

	req, _ := http.NewRequest("GET", "http://api.test/search?q=golang", nil)
	req.Header.Set("X-Tenant", "acme")
	resp, err := m.Client().Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "found", string(body))

	// The same URL without the header passes through.
	resp = get(t, m.Client(), "http://api.test/search?q=golang")
	resp.Body.Close()
	assert.Equal(t, 599, resp.StatusCode)
	assert.Equal(t, 1, stub.count())
}

func TestMocker_DisableAndEnable(t *testing.T) {
	m, stub := newTestMocker(t)
	m.OnGet("/users").Reply("mocked").MustRegister()

	assert.True(t, m.Enabled())

	m.Disable()
	resp := get(t, m.Client(), "http://api.test/users")
	resp.Body.Close()
	assert.Equal(t, 599, resp.StatusCode)
	assert.Equal(t, 1, stub.count())

	m.Enable()
	resp = get(t, m.Client(), "http://api.test/users")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stub.count(), "definitions survive a disable/enable round trip")
}

func TestMocker_ClearAll(t *testing.T) {
	m, stub := newTestMocker(t)
	m.OnGet("/users").Reply("ok").MustRegister()
	m.SetState("token", "abc")

	m.ClearAll()

	resp := get(t, m.Client(), "http://api.test/users")
	resp.Body.Close()
	assert.Equal(t, 599, resp.StatusCode)
	assert.Equal(t, 1, stub.count())
	assert.Empty(t, m.AllState())

	// Clearing an already-empty mocker changes nothing.
	m.ClearAll()
	assert.Empty(t, m.Endpoints())
}

func TestMocker_FaultInjection(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/slow").Fault(FaultTimeout).MustRegister()
	m.OnGet("/down").Fault(FaultConnectionRefused).MustRegister()
	m.OnGet("/gone").Fault(FaultAbort).MustRegister()

	// Faults are deterministic: every matched call fails.
	for i := 0; i < 2; i++ {
		_, err := m.Client().Get("http://api.test/slow")
		require.Error(t, err)
		var netErr net.Error
		require.ErrorAs(t, err, &netErr)
		assert.True(t, netErr.Timeout())
	}

	_, err := m.Client().Get("http://api.test/down")
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)

	_, err = m.Client().Get("http://api.test/gone")
	require.Error(t, err)
}

func TestMocker_StatePersistsAcrossRequests(t *testing.T) {
	m, _ := newTestMocker(t)

	m.OnPost("/todos").
		Handle(func(ctx *RequestContext) (interface{}, error) {
			todos, _ := ctx.State.Get("todos")
			list, _ := todos.([]interface{})
			list = append(list, ctx.Body)
			ctx.State.Set("todos", list)
			return &Reply{Data: ctx.Body, Status: http.StatusCreated}, nil
		}).
		MustRegister()
	m.OnGet("/todos").
		Handle(func(ctx *RequestContext) (interface{}, error) {
			todos, _ := ctx.State.Get("todos")
			if todos == nil {
				return []interface{}{}, nil
			}
			return todos, nil
		}).
		MustRegister()

	client := m.Client()
	for _, title := range []string{"write tests", "ship it"} {
		resp, err := client.Post("http://api.test/todos", "application/json",
			strings.NewReader(`{"title":"`+title+`"}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := get(t, client, "http://api.test/todos")
	var todos []map[string]interface{}
	decodeJSON(t, resp, &todos)
	require.Len(t, todos, 2)
	assert.Equal(t, "write tests", todos[0]["title"])
	assert.Equal(t, "ship it", todos[1]["title"])
}

func TestMocker_Delay(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/slow").Reply("ok").Delay(40 * time.Millisecond).MustRegister()

	start := time.Now()
	resp := get(t, m.Client(), "http://api.test/slow")
	resp.Body.Close()
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestMocker_DefaultDelayFromConfig(t *testing.T) {
	m, _ := newTestMocker(t, WithConfig(Config{DefaultDelay: 30 * time.Millisecond}))
	m.OnGet("/a").Reply("ok").MustRegister()

	start := time.Now()
	resp := get(t, m.Client(), "http://api.test/a")
	resp.Body.Close()
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMocker_BaseURLStripping(t *testing.T) {
	m, stub := newTestMocker(t, WithConfig(Config{BaseURL: "http://api.test/v1/"}))
	m.OnGet("/users/:id").Reply("ok").MustRegister()

	// The pattern is relative: it matches once the base URL is
	// stripped, even though the raw path is /v1/users/42.
	resp := get(t, m.Client(), "http://api.test/v1/users/42")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get(t, m.Client(), "http://api.test/v1/accounts/42")
	resp.Body.Close()
	assert.Equal(t, 599, resp.StatusCode)
	assert.Equal(t, 1, stub.count())
}

func TestMocker_DefaultHeaders(t *testing.T) {
	m, _ := newTestMocker(t, WithConfig(Config{
		DefaultHeaders: map[string]string{"X-Mock": "true"},
	}))
	m.OnGet("/users").Reply("ok").MustRegister()

	resp := get(t, m.Client(), "http://api.test/users")
	resp.Body.Close()
	assert.Equal(t, "true", resp.Header.Get("X-Mock"))
}

func TestMocker_RequestJournal(t *testing.T) {
	m, _ := newTestMocker(t, WithConfig(Config{RecordRequests: true}))
	m.OnGet("/users/:id").Reply("ok").MustRegister()

	resp := get(t, m.Client(), "http://api.test/users/42")
	resp.Body.Close()

	requests := m.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "GET", requests[0].Method)
	assert.Equal(t, "/users/42", requests[0].Path)
	assert.Equal(t, "/users/:id", requests[0].MatchedPath)
	assert.False(t, requests[0].Timestamp.IsZero())

	m.ResetRequests()
	assert.Empty(t, m.Requests())
}

func TestMocker_Endpoints(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/users/:id").Reply("ok").Priority(5).MustRegister()
	m.OnGet("/down").Fault(FaultTimeout).MustRegister()

	endpoints := m.Endpoints()
	require.Len(t, endpoints, 2)
	assert.Equal(t, "/users/:id", endpoints[0].Path)
	assert.Equal(t, 5, endpoints[0].Priority)
	assert.Equal(t, scoreLiteralSegment+scoreParamSegment, endpoints[0].Specificity)
	assert.Equal(t, FaultTimeout, endpoints[1].Fault)
}

func TestMocker_RemoveEndpoint(t *testing.T) {
	m, stub := newTestMocker(t)
	m.OnGet("/users").Reply("ok").MustRegister()

	require.NoError(t, m.RemoveEndpoint("GET", "/users"))
	assert.Error(t, m.RemoveEndpoint("GET", "/users"))

	resp := get(t, m.Client(), "http://api.test/users")
	resp.Body.Close()
	assert.Equal(t, 599, resp.StatusCode)
	assert.Equal(t, 1, stub.count())
}

func TestMocker_UpdateConfig(t *testing.T) {
	m, _ := newTestMocker(t, WithConfig(Config{
		DefaultHeaders: map[string]string{"X-A": "1"},
	}))

	m.UpdateConfig(Config{
		DefaultHeaders:  map[string]string{"X-B": "2"},
		DefaultPriority: 3,
	})

	cfg := m.Config()
	assert.Equal(t, "1", cfg.DefaultHeaders["X-A"], "header maps merge key by key")
	assert.Equal(t, "2", cfg.DefaultHeaders["X-B"])
	assert.Equal(t, 3, cfg.DefaultPriority)
}

func TestMocker_InstallUninstall(t *testing.T) {
	original := http.DefaultTransport
	defer func() { http.DefaultTransport = original }()

	m, _ := newTestMocker(t)

	m.Install()
	assert.Same(t, m.Transport(), http.DefaultTransport)

	// Installing twice must not clobber the saved original.
	m.Install()
	m.Uninstall()
	assert.Same(t, original, http.DefaultTransport)

	// Uninstalling when not installed is a no-op.
	m.Uninstall()
	assert.Same(t, original, http.DefaultTransport)
}

func TestMocker_ServeHTTP(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/users/:id").
		Handle(func(ctx *RequestContext) (interface{}, error) {
			return &Reply{
				Data:    map[string]string{"id": ctx.Params["id"]},
				Status:  http.StatusOK,
				Headers: map[string]string{"X-Served": "yes"},
			}, nil
		}).
		MustRegister()

	srv := httptest.NewServer(m)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/users/42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Served"))
	var got map[string]string
	decodeJSON(t, resp, &got)
	assert.Equal(t, "42", got["id"])

	// Unmatched requests answer 404 instead of passing through.
	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMocker_ServeHTTPFaultAnswers502(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/down").Fault(FaultConnectionRefused).MustRegister()

	srv := httptest.NewServer(m)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/down")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestNew_ConfigurationError(t *testing.T) {
	original := http.DefaultTransport
	http.DefaultTransport = nil
	defer func() { http.DefaultTransport = original }()

	_, err := New()
	require.Error(t, err)
}

func TestMocker_Definitions(t *testing.T) {
	m, _ := newTestMocker(t)
	m.OnGet("/users").Reply("ok").Priority(2).MustRegister()

	defs := m.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, "GET", defs[0].Method)
	assert.Equal(t, "/users", defs[0].Path)
	assert.Equal(t, 2, defs[0].Priority)
}
