package auth

import (
	"net/http"
	"strings"
)

// Decision is the outcome of evaluating the authorization policy for a request.
type Decision int

const (
	RequiresAuth Decision = iota
	Public
)

func (d Decision) String() string {
	if d == Public {
		return "public"
	}
	return "requires_auth"
}

// Rule maps a path pattern, and optionally a method, to a decision.
//
// Pattern forms:
//
//	/exact/path     exact match
//	/prefix/**      the prefix itself or anything below it
//	/**/*.ext       any path ending in .ext
//	/**             any path
type Rule struct {
	Pattern string
	Method  string
	Public  bool
}

type matcher func(path string) bool

type compiledRule struct {
	Rule
	match matcher
}

// Policy is an ordered, immutable rule list. The first matching rule wins;
// unmatched requests require authentication.
type Policy struct {
	rules []compiledRule
}

func NewPolicy(rules ...Rule) *Policy {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		compiled = append(compiled, compiledRule{Rule: r, match: compile(r.Pattern)})
	}
	return &Policy{rules: compiled}
}

// DefaultRules is the public surface of the API under basePath.
func DefaultRules(basePath string) []Rule {
	rules := []Rule{
		{Pattern: "/**", Method: http.MethodOptions, Public: true},
		{Pattern: "/", Public: true},
		{Pattern: "/favicon.ico", Public: true},
	}
	for _, ext := range []string{"png", "gif", "svg", "jpg", "html", "css", "js"} {
		rules = append(rules, Rule{Pattern: "/**/*." + ext, Public: true})
	}
	return append(rules,
		Rule{Pattern: basePath + "/signin", Public: true},
		Rule{Pattern: basePath + "/signup", Public: true},
		Rule{Pattern: basePath + "/users/availability", Public: true},
		Rule{Pattern: "/swagger-ui.html", Public: true},
		Rule{Pattern: "/swagger-resources/**", Public: true},
		Rule{Pattern: "/v2/api-docs", Public: true},
		Rule{Pattern: "/health", Public: true},
	)
}

// Decide evaluates the rules for a request path and method.
func (p *Policy) Decide(path, method string) Decision {
	path = normalizePath(path)
	for _, r := range p.rules {
		if r.Method != "" && !strings.EqualFold(r.Method, method) {
			continue
		}
		if r.match(path) {
			if r.Public {
				return Public
			}
			return RequiresAuth
		}
	}
	return RequiresAuth
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

func compile(pattern string) matcher {
	pattern = normalizePath(pattern)
	switch {
	case pattern == "/**":
		return func(string) bool { return true }
	case strings.HasPrefix(pattern, "/**/*."):
		suffix := strings.TrimPrefix(pattern, "/**/*")
		return func(path string) bool { return strings.HasSuffix(path, suffix) }
	case strings.HasSuffix(pattern, "/**"):
		prefix := strings.TrimSuffix(pattern, "/**")
		return func(path string) bool {
			return path == prefix || strings.HasPrefix(path, prefix+"/")
		}
	default:
		return func(path string) bool { return path == pattern }
	}
}
