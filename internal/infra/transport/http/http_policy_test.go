package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkrupp/homecase-anime/internal/domain"
	http_ "github.com/mkrupp/homecase-anime/internal/infra/transport/http"
)

func TestRule_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rule    http_.Rule
		method  string
		path    string
		matches bool
	}{
		{name: "exact", rule: http_.Rule{Method: "POST", Pattern: "/animes"}, method: "POST", path: "/animes", matches: true},
		{name: "trailing slash", rule: http_.Rule{Method: "POST", Pattern: "/animes"}, method: "POST", path: "/animes/", matches: true},
		{name: "method mismatch", rule: http_.Rule{Method: "POST", Pattern: "/animes"}, method: "GET", path: "/animes"},
		{name: "any method", rule: http_.Rule{Pattern: "/animes"}, method: "PATCH", path: "/animes", matches: true},
		{name: "star one segment", rule: http_.Rule{Pattern: "/animes/*"}, method: "GET", path: "/animes/1", matches: true},
		{name: "star needs a segment", rule: http_.Rule{Pattern: "/animes/*"}, method: "GET", path: "/animes"},
		{name: "star only one segment", rule: http_.Rule{Pattern: "/animes/*"}, method: "GET", path: "/animes/admin/1"},
		{name: "double star zero segments", rule: http_.Rule{Pattern: "/animes/**"}, method: "GET", path: "/animes", matches: true},
		{name: "double star many segments", rule: http_.Rule{Pattern: "/animes/**"}, method: "GET", path: "/animes/a/b/c", matches: true},
		{name: "double star prefix mismatch", rule: http_.Rule{Pattern: "/animes/**"}, method: "GET", path: "/users/1"},
		{name: "longer path", rule: http_.Rule{Pattern: "/animes"}, method: "GET", path: "/animes/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.matches, tt.rule.Matches(tt.method, tt.path))
		})
	}
}

func TestPolicy_Evaluate(t *testing.T) {
	t.Parallel()

	policy := http_.Policy{
		{Method: http.MethodDelete, Pattern: "/animes/admin/*", Roles: []domain.Role{domain.RoleAdmin}},
		{Method: http.MethodDelete, Pattern: "/animes/*", Roles: []domain.Role{domain.RoleUser, domain.RoleAdmin}},
		{Method: http.MethodGet, Pattern: "/open"},
	}

	user := domain.Principal{Username: "devdojo", Roles: domain.Roles{domain.RoleUser}}
	admin := domain.Principal{Username: "leonardo", Roles: domain.Roles{domain.RoleUser, domain.RoleAdmin}}
	nobody := domain.Principal{Username: "guest"}

	assert.Equal(t, http_.DecisionForbid, policy.Evaluate(http.MethodDelete, "/animes/admin/1", user))
	assert.Equal(t, http_.DecisionAllow, policy.Evaluate(http.MethodDelete, "/animes/admin/1", admin))
	assert.Equal(t, http_.DecisionAllow, policy.Evaluate(http.MethodDelete, "/animes/1", user))
	assert.Equal(t, http_.DecisionForbid, policy.Evaluate(http.MethodDelete, "/animes/1", nobody))
	assert.Equal(t, http_.DecisionAllow, policy.Evaluate(http.MethodGet, "/open", nobody))
	assert.Equal(t, http_.DecisionAllow, policy.Evaluate(http.MethodGet, "/unlisted", nobody))
}
