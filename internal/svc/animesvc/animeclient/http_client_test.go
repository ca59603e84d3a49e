package animeclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/homecase-anime/internal/domain"
	context_ "github.com/mkrupp/homecase-anime/internal/infra/context"
	http_ "github.com/mkrupp/homecase-anime/internal/infra/transport/http"
	"github.com/mkrupp/homecase-anime/internal/repo/anime"
	"github.com/mkrupp/homecase-anime/internal/repo/user"
	"github.com/mkrupp/homecase-anime/internal/svc/animesvc"
	"github.com/mkrupp/homecase-anime/internal/svc/animesvc/animeclient"
	"github.com/mkrupp/homecase-anime/internal/svc/authsvc"
	"github.com/mkrupp/homecase-anime/internal/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	db := testutil.OpenTestDB(t)

	authSvc, err := authsvc.NewAuthService(
		user.SQLiteUserRepositoryFactory(db),
		authsvc.AuthConfig{BcryptCost: bcrypt.MinCost},
	)
	require.NoError(t, err)

	_, err = authSvc.RegisterUser(ctx, "DevDojo Academy", "devdojo", "academy", domain.Roles{domain.RoleUser})
	require.NoError(t, err)

	_, err = authSvc.RegisterUser(ctx, "Leonardo", "leonardo", "academy",
		domain.Roles{domain.RoleUser, domain.RoleAdmin})
	require.NoError(t, err)

	animeSvc, err := animesvc.NewAnimeService(anime.SQLiteAnimeRepositoryFactory(db), animesvc.AnimeConfig{})
	require.NoError(t, err)

	srv := httptest.NewServer(http_.TracingMiddleware(
		animesvc.NewHTTPTransport(animeSvc, authSvc, animesvc.HTTPTransportConfig{}),
	))
	t.Cleanup(srv.Close)

	return srv
}

func newClient(srv *httptest.Server, username string) *animeclient.HTTPClient {
	return animeclient.NewHTTPClient(animeclient.HTTPClientConfig{
		BaseURL:  srv.URL + "/",
		Username: username,
		Password: "academy",
	}, srv.Client())
}

func TestHTTPClient_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := newServer(t)
	client := newClient(srv, "devdojo")

	created, err := client.Create(ctx, "Samurai X")
	require.NoError(t, err)
	require.Positive(t, created.ID)

	created.Name = "Samurai X 2"
	require.NoError(t, client.Replace(ctx, created))

	got, err := client.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = client.Create(ctx, "Samurai Champloo")
	require.NoError(t, err)

	found, err := client.Find(ctx, "Samurai")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	all, err := client.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	page, err := client.List(ctx, domain.PageRequest{Page: 0, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.Equal(t, []domain.Anime{got}, page.Content)

	require.NoError(t, client.Delete(ctx, created.ID))

	_, err = client.Get(ctx, created.ID)
	require.ErrorIs(t, err, domain.ErrAnimeNotFound)

	require.ErrorIs(t, client.Delete(ctx, created.ID), domain.ErrAnimeNotFound)
}

func TestHTTPClient_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := newServer(t)

	created, err := newClient(srv, "devdojo").Create(ctx, "Hellsing")
	require.NoError(t, err)

	err = newClient(srv, "devdojo").AdminDelete(ctx, created.ID)
	require.ErrorIs(t, err, animeclient.ErrForbidden)

	var apiErr *animeclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	_, err = newClient(srv, "devdojo").Create(ctx, "")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, domain.MsgAnimeNameEmpty, apiErr.Response.Message)

	_, err = newClient(srv, "nobody").ListAll(ctx)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, newClient(srv, "leonardo").AdminDelete(ctx, created.ID))
}

func TestHTTPClient_PropagatesTraceID(t *testing.T) {
	t.Parallel()

	var seen string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(http_.TraceIDHeader)
		_ = http_.WriteJSON(w, http.StatusOK, []domain.Anime{})
	}))
	t.Cleanup(srv.Close)

	client := newClient(srv, "devdojo")
	ctx := context_.WithTraceID(context.Background(), "trace-123")

	animes, err := client.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, animes)
	assert.Equal(t, "trace-123", seen)
}
