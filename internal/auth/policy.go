package auth

import (
	"net/http"
	"sort"
	"strings"
)

type DenyReason string

const (
	DenyNone            DenyReason = ""
	DenyUnauthenticated DenyReason = "unauthenticated"
	DenyForbidden       DenyReason = "forbidden"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
	// Rule names the rule that decided, for logs.
	Rule string
}

func Allow(rule string) Decision {
	return Decision{Allowed: true, Rule: rule}
}

func Deny(reason DenyReason, rule string) Decision {
	return Decision{Allowed: false, Reason: reason, Rule: rule}
}

// RuleKind orders the rules. Lower kinds are always evaluated first, whatever the
// order they were added in.
type RuleKind int

const (
	// RulePublic allows every method without a principal.
	RulePublic RuleKind = iota
	// RulePublicRead allows GET without a principal.
	RulePublicRead
	// RuleWriteRestricted requires one of the authorities for non-GET methods.
	RuleWriteRestricted
	// RuleRestricted requires one of the authorities for every method.
	RuleRestricted
	// RuleAuthenticated requires any principal.
	RuleAuthenticated
)

func (k RuleKind) String() string {
	switch k {
	case RulePublic:
		return "public"
	case RulePublicRead:
		return "public_read"
	case RuleWriteRestricted:
		return "write_restricted"
	case RuleRestricted:
		return "restricted"
	case RuleAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

type Rule struct {
	Kind        RuleKind
	Patterns    []string
	Authorities []string
}

func (r Rule) matches(method, path string) bool {
	if r.Kind == RulePublicRead && method != http.MethodGet {
		return false
	}
	if r.Kind == RuleWriteRestricted && method == http.MethodGet {
		return false
	}
	for _, p := range r.Patterns {
		if MatchPattern(p, path) {
			return true
		}
	}
	return false
}

func (r Rule) decide(p *Principal) Decision {
	name := r.Kind.String()
	switch r.Kind {
	case RulePublic, RulePublicRead:
		return Allow(name)
	case RuleWriteRestricted, RuleRestricted:
		if p == nil {
			return Deny(DenyUnauthenticated, name)
		}
		if p.HasAnyAuthority(r.Authorities...) {
			return Allow(name)
		}
		return Deny(DenyForbidden, name)
	default:
		if p == nil {
			return Deny(DenyUnauthenticated, name)
		}
		return Allow(name)
	}
}

// Policy is an immutable route table. It is safe for concurrent use.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	sorted := append([]Rule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Kind < sorted[j].Kind
	})
	return &Policy{rules: sorted}
}

// NewCatalogPolicy is the route table of the catalog API. extraPublic adds public
// patterns such as the metrics path.
func NewCatalogPolicy(extraPublic ...string) *Policy {
	public := []string{"/oauth/token", "/health", "/ping", "/openapi.yml", "/swagger/**"}
	public = append(public, extraPublic...)
	operatorOrAdmin := []string{"/products/**", "/categories/**"}

	return NewPolicy(
		Rule{Kind: RulePublic, Patterns: public},
		Rule{Kind: RulePublicRead, Patterns: operatorOrAdmin},
		Rule{Kind: RuleWriteRestricted, Patterns: operatorOrAdmin, Authorities: []string{RoleOperator, RoleAdmin}},
		Rule{Kind: RuleRestricted, Patterns: []string{"/users/**"}, Authorities: []string{RoleAdmin}},
		Rule{Kind: RuleAuthenticated, Patterns: []string{"/**"}},
	)
}

// Authorize returns the decision of the first matching rule. Paths no rule matches
// require a principal.
func (pol *Policy) Authorize(method, path string, p *Principal) Decision {
	path = normalizePath(path)
	for _, r := range pol.rules {
		if r.matches(method, path) {
			return r.decide(p)
		}
	}
	return Rule{Kind: RuleAuthenticated}.decide(p)
}

// MatchPattern matches path against an exact pattern or a "/**" prefix pattern.
// "/products/**" matches "/products" and everything below it.
func MatchPattern(pattern, path string) bool {
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		if base == "" {
			return true
		}
		return path == base || strings.HasPrefix(path, base+"/")
	}
	return normalizePath(pattern) == path
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
