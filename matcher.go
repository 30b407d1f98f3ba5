package mockwire

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/antchfx/xmlquery"
	"github.com/oliveagle/jsonpath"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// requestMatcher decides whether one definition applies to one
// request. All checks combine with AND semantics; there is no
// OR/alternatives mechanism.
type requestMatcher struct {
	logger *util.Logger
}

// matches evaluates the definition against the request, returning the
// extracted path parameters on success. path is the request path with
// the configured base URL already stripped; body is the drained
// request body (nil when the request had none).
//
// Checks short-circuit in cost order: method, custom predicate, path
// pattern, query constraints, header constraints, body constraints.
func (m *requestMatcher) matches(def *Definition, req *http.Request, path string, body []byte) (map[string]string, bool) {
	if def.Method != req.Method {
		return nil, false
	}

	if def.Matcher != nil && !m.runPredicate(def, req) {
		return nil, false
	}

	params, ok := def.pattern.match(path)
	if !ok {
		return nil, false
	}

	if len(def.Query) > 0 {
		values := req.URL.Query()
		for key, want := range def.Query {
			got, present := values[key]
			if !present || len(got) == 0 || got[0] != want {
				return nil, false
			}
		}
	}

	for key, want := range def.MatchHeaders {
		if req.Header.Get(key) != want {
			return nil, false
		}
	}

	if len(def.BodyJSONPath) > 0 && !m.matchJSONPath(def, body) {
		return nil, false
	}

	if len(def.BodyXPath) > 0 && !m.matchXPath(def, body) {
		return nil, false
	}

	return params, true
}

// runPredicate invokes the custom predicate. A panicking predicate is
// treated as no match rather than failing the request; the panic is
// logged so a broken predicate is not silently invisible.
func (m *requestMatcher) runPredicate(def *Definition, req *http.Request) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warnf("custom matcher for %s %s panicked: %v", def.Method, def.Path, r)
			matched = false
		}
	}()
	return def.Matcher(req)
}

// matchJSONPath requires every selector to resolve against the JSON
// body to the expected string. A body that is not JSON never matches.
func (m *requestMatcher) matchJSONPath(def *Definition, body []byte) bool {
	doc := parseBody(body)
	if _, isText := doc.(string); doc == nil || isText {
		return false
	}

	for selector, want := range def.BodyJSONPath {
		got, err := jsonpath.JsonPathLookup(doc, selector)
		if err != nil {
			m.logger.Debugf("jsonpath lookup %q failed: %v", selector, err)
			return false
		}
		if fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// matchXPath requires every selector to resolve against the XML body
// to the expected string.
func (m *requestMatcher) matchXPath(def *Definition, body []byte) bool {
	if len(body) == 0 {
		return false
	}

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		m.logger.Debugf("xml parse failed: %v", err)
		return false
	}

	for selector, want := range def.BodyXPath {
		node := xmlquery.FindOne(doc, selector)
		if node == nil || node.InnerText() != want {
			return false
		}
	}
	return true
}
