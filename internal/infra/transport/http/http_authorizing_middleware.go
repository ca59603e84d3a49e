package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/mkrupp/homecase-anime/internal/domain"
	context_ "github.com/mkrupp/homecase-anime/internal/infra/context"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
)

// DefaultRealm is announced in WWW-Authenticate when none is configured.
const DefaultRealm = "Realm"

// Authenticator verifies a username/password pair and resolves the caller.
type Authenticator interface {
	// Authenticate returns the caller's principal, or an error wrapping
	// domain.ErrInvalidCredentials if the credentials are wrong.
	Authenticate(ctx context.Context, username, password string) (domain.Principal, error)
}

// AuthorizingMiddleware authenticates every request with HTTP Basic
// credentials and then applies policy before dispatching to next.
//
//   - missing, malformed or wrong credentials: 401 with a Basic challenge
//   - valid credentials lacking the role the policy requires: 403
//   - authenticator failure: 500
//
// On success the principal is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	authenticator Authenticator,
	policy Policy,
	realm string,
	log logging.Logger,
) http.Handler {
	if realm == "" {
		realm = DefaultRealm
	}

	challenge := "Basic realm=" + strconv.Quote(realm)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			log.WarnContext(r.Context(), "no credentials provided")
			w.Header().Set("WWW-Authenticate", challenge)
			WriteError(w, r, http.StatusUnauthorized, "Full authentication is required to access this resource")

			return
		}

		principal, err := authenticator.Authenticate(r.Context(), username, password)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				w.Header().Set("WWW-Authenticate", challenge)
				WriteError(w, r, http.StatusUnauthorized, "Bad credentials")
			} else {
				WriteServiceError(w, r, log, err)
			}

			return
		}

		ctx := context_.WithPrincipal(r.Context(), principal)

		if policy.Evaluate(r.Method, r.URL.Path, principal) == DecisionForbid {
			log.WarnContext(ctx, "access denied", logging.Group("http",
				"method", r.Method,
				"path", r.URL.Path,
			), "roles", principal.Roles.String())
			WriteError(w, r, http.StatusForbidden, "Access is denied")

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
