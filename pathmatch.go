package mockwire

import (
	"regexp"
	"strings"

	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// Specificity weights per path segment. Literal segments outweigh
// parameter segments so that /users/me beats /users/:id at equal
// priority.
const (
	scoreLiteralSegment = 10
	scoreParamSegment   = 1
)

// pathPattern is a compiled path pattern. Patterns are matched against
// whole paths only; there is no prefix matching.
type pathPattern struct {
	raw         string
	re          *regexp.Regexp
	segments    []string
	specificity int
}

// normalizePath ensures a leading slash and strips one trailing slash,
// unless the path is exactly "/".
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != "/" && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// normalizeBaseURL strips trailing slashes from a base URL.
func normalizeBaseURL(base string) string {
	for strings.HasSuffix(base, "/") {
		base = strings.TrimSuffix(base, "/")
	}
	return base
}

// compilePattern builds a matcher from a pattern with :name parameter
// segments. Every regex metacharacter in literal segments is escaped;
// a parameter segment matches exactly one non-empty path segment.
func compilePattern(pattern string) (*pathPattern, error) {
	normalized := normalizePath(pattern)
	segments := strings.Split(strings.TrimPrefix(normalized, "/"), "/")

	specificity := 0
	var sb strings.Builder
	sb.WriteString("^")
	for _, seg := range segments {
		sb.WriteString("/")
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			sb.WriteString("([^/]+)")
			specificity += scoreParamSegment
		} else {
			sb.WriteString(regexp.QuoteMeta(seg))
			specificity += scoreLiteralSegment
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, util.NewValidationError("invalid path pattern", pattern)
	}

	return &pathPattern{
		raw:         normalized,
		re:          re,
		segments:    segments,
		specificity: specificity,
	}, nil
}

// match reports whether path matches the pattern and, on match,
// extracts the named parameters positionally.
func (pp *pathPattern) match(path string) (map[string]string, bool) {
	normalized := normalizePath(path)
	if !pp.re.MatchString(normalized) {
		return nil, false
	}

	params := make(map[string]string)
	parts := strings.Split(strings.TrimPrefix(normalized, "/"), "/")
	for i, seg := range pp.segments {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			params[seg[1:]] = parts[i]
		}
	}
	return params, true
}
