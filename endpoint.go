package mockwire

import (
	"net/http"
	"time"
)

// EndpointBuilder accumulates a definition fluently. Terminate the
// chain with Register:
//
//	m.OnGet("/users/:id").
//		Handle(func(ctx *mockwire.RequestContext) (interface{}, error) {
//			return map[string]string{"id": ctx.Params["id"]}, nil
//		}).
//		Register()
type EndpointBuilder struct {
	mocker *Mocker
	def    Definition
}

// Reply sets a literal response value.
func (b *EndpointBuilder) Reply(value interface{}) *EndpointBuilder {
	b.def.Response = value
	return b
}

// ReplyFunc sets a zero-argument response producer.
func (b *EndpointBuilder) ReplyFunc(fn func() (interface{}, error)) *EndpointBuilder {
	b.def.ResponseFunc = fn
	return b
}

// Handle sets a dynamic handler.
func (b *EndpointBuilder) Handle(fn HandlerFunc) *EndpointBuilder {
	b.def.Handler = fn
	return b
}

// Script sets a JavaScript handler.
func (b *EndpointBuilder) Script(source string) *EndpointBuilder {
	b.def.Script = source
	return b
}

// Status sets the response status code.
func (b *EndpointBuilder) Status(code int) *EndpointBuilder {
	b.def.Status = code
	return b
}

// Header adds one response header.
func (b *EndpointBuilder) Header(key, value string) *EndpointBuilder {
	if b.def.Headers == nil {
		b.def.Headers = make(map[string]string)
	}
	b.def.Headers[key] = value
	return b
}

// Headers sets the response headers.
func (b *EndpointBuilder) Headers(headers map[string]string) *EndpointBuilder {
	b.def.Headers = headers
	return b
}

// Delay sets the simulated latency.
func (b *EndpointBuilder) Delay(d time.Duration) *EndpointBuilder {
	b.def.Delay = d
	return b
}

// Priority sets the tie-breaking priority; higher wins.
func (b *EndpointBuilder) Priority(p int) *EndpointBuilder {
	b.def.Priority = p
	return b
}

// MatchQuery requires exact query parameter values.
func (b *EndpointBuilder) MatchQuery(query map[string]string) *EndpointBuilder {
	b.def.Query = query
	return b
}

// MatchHeaders requires exact request header values.
func (b *EndpointBuilder) MatchHeaders(headers map[string]string) *EndpointBuilder {
	b.def.MatchHeaders = headers
	return b
}

// Match adds a custom predicate over the raw request.
func (b *EndpointBuilder) Match(pred func(*http.Request) bool) *EndpointBuilder {
	b.def.Matcher = pred
	return b
}

// MatchJSONPath requires JSONPath selections over the request body.
func (b *EndpointBuilder) MatchJSONPath(constraints map[string]string) *EndpointBuilder {
	b.def.BodyJSONPath = constraints
	return b
}

// MatchXPath requires XPath selections over the request body.
func (b *EndpointBuilder) MatchXPath(constraints map[string]string) *EndpointBuilder {
	b.def.BodyXPath = constraints
	return b
}

// Fault makes every matched call fail with the labeled transport
// fault.
func (b *EndpointBuilder) Fault(label string) *EndpointBuilder {
	b.def.NetworkError = label
	return b
}

// Register stores the accumulated definition.
func (b *EndpointBuilder) Register() error {
	return b.mocker.Register(b.def)
}

// MustRegister is Register that panics on invalid definitions, for
// test setup code.
func (b *EndpointBuilder) MustRegister() {
	if err := b.Register(); err != nil {
		panic(err)
	}
}
