package http

import (
	"strings"

	"github.com/mkrupp/homecase-anime/internal/domain"
)

// Rule grants access to requests matching Method and Pattern to callers
// holding any of Roles.
//
// Pattern is a slash-separated path where "*" matches exactly one segment and
// a trailing "**" matches zero or more segments. An empty Method matches every
// method. A rule with no roles admits any authenticated caller.
type Rule struct {
	Method  string
	Pattern string
	Roles   []domain.Role
}

// Matches reports whether the rule applies to method and path.
func (rule Rule) Matches(method, path string) bool {
	if rule.Method != "" && rule.Method != method {
		return false
	}

	return matchPath(splitPath(rule.Pattern), splitPath(path))
}

// Allows reports whether principal satisfies the rule's role requirement.
func (rule Rule) Allows(principal domain.Principal) bool {
	return len(rule.Roles) == 0 || principal.HasAnyRole(rule.Roles...)
}

// Policy is an ordered route-to-role table. The first matching rule decides;
// requests matching no rule only need to be authenticated.
type Policy []Rule

// Decision is the outcome of evaluating a Policy for a request.
type Decision int

const (
	// DecisionAllow admits the request.
	DecisionAllow Decision = iota
	// DecisionForbid rejects an authenticated caller lacking the required role.
	DecisionForbid
)

// Evaluate returns the decision for principal calling method on path.
func (p Policy) Evaluate(method, path string, principal domain.Principal) Decision {
	for _, rule := range p {
		if !rule.Matches(method, path) {
			continue
		}

		if rule.Allows(principal) {
			return DecisionAllow
		}

		return DecisionForbid
	}

	return DecisionAllow
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}

func matchPath(pattern, path []string) bool {
	for i, seg := range pattern {
		if seg == "**" {
			return true
		}

		if i >= len(path) {
			return false
		}

		if seg != "*" && seg != path[i] {
			return false
		}
	}

	return len(pattern) == len(path)
}
