package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/repo/anime"
	"github.com/mkrupp/homecase-anime/internal/repo/user"
	"github.com/mkrupp/homecase-anime/internal/svc/animesvc"
	"github.com/mkrupp/homecase-anime/internal/svc/animesvc/animeclient"
	"github.com/mkrupp/homecase-anime/internal/svc/authsvc"
	"github.com/mkrupp/homecase-anime/internal/testutil"
)

func newTestConfig(t *testing.T) Config {
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

	animeSvc, err := animesvc.NewAnimeService(anime.SQLiteAnimeRepositoryFactory(db), animesvc.AnimeConfig{})
	require.NoError(t, err)

	srv := httptest.NewServer(animesvc.NewHTTPTransport(animeSvc, authSvc, animesvc.HTTPTransportConfig{}))
	t.Cleanup(srv.Close)

	return Config{Client: animeclient.HTTPClientConfig{BaseURL: srv.URL}} //nolint:exhaustruct
}

func TestRun_Demo(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	var out bytes.Buffer

	err := run(context.Background(), cfg, []string{"-user", "devdojo", "-password", "academy", "demo"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), `created 1 "Samurai X"`)
	assert.Contains(t, out.String(), `replaced 1 "Samurai X 2"`)
	assert.Contains(t, out.String(), "anime 1 is gone")
}

func TestRun_CreateAndGet(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	creds := []string{"-user", "devdojo", "-password", "academy"}

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, append(creds, "create", "Akira"), &out))

	var created domain.Anime
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))
	assert.Equal(t, "Akira", created.Name)

	out.Reset()
	require.NoError(t, run(context.Background(), cfg, append(creds, "get", "1"), &out))

	var got domain.Anime
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, created, got)

	err := run(context.Background(), cfg, append(creds, "admin-delete", "1"), &out)
	require.ErrorIs(t, err, animeclient.ErrForbidden)

	err = run(context.Background(), cfg, append(creds, "explode"), &out)
	require.ErrorIs(t, err, errUnknown)

	err = run(context.Background(), cfg, creds, &out)
	require.ErrorIs(t, err, errUsage)
}
