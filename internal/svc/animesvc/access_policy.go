package animesvc

import (
	"net/http"

	"github.com/mkrupp/homecase-anime/internal/domain"
	http_ "github.com/mkrupp/homecase-anime/internal/infra/transport/http"
)

var anyRole = []domain.Role{domain.RoleUser, domain.RoleAdmin}

// AccessPolicy returns the route-to-role table guarding the anime routes.
// The admin delete rule precedes the generic delete rule so it wins.
func AccessPolicy() http_.Policy {
	return http_.Policy{
		{Method: http.MethodGet, Pattern: "/animes/**", Roles: anyRole},
		{Method: http.MethodPost, Pattern: "/animes", Roles: anyRole},
		{Method: http.MethodPut, Pattern: "/animes", Roles: anyRole},
		{Method: http.MethodDelete, Pattern: "/animes/admin/*", Roles: []domain.Role{domain.RoleAdmin}},
		{Method: http.MethodDelete, Pattern: "/animes/*", Roles: anyRole},
	}
}
