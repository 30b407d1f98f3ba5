/*
Package mockwire intercepts outbound HTTP calls and serves
locally-defined mock responses in their place, so UIs and clients can
be developed and tested without a live backend.

	m := mockwire.MustNew()
	m.OnGet("/users/1").Reply(map[string]interface{}{"id": 1, "name": "Test"}).MustRegister()

	resp, err := m.Client().Get("https://api.example.com/users/1")

Definitions can match on path patterns with :name parameters, query
and header constraints, body selectors and custom predicates; they can
answer with literal values, Go handlers, or JavaScript handlers that
share a per-mocker state store across calls. Unmatched requests fall
through to the real transport.
*/
package mockwire
