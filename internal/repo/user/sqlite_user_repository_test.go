package user_test

import (
	"context"
	"testing"

	"github.com/Pallinder/go-randomdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/repo/user"
	"github.com/mkrupp/homecase-anime/internal/testutil"
)

func TestSQLiteUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := user.NewSQLiteUserRepository(testutil.OpenTestDB(t))

	want := domain.User{
		Name:         randomdata.FullName(randomdata.RandomGender),
		Username:     "leonardo",
		PasswordHash: "$2a$10$hash",
		Authorities:  domain.Roles{domain.RoleUser, domain.RoleAdmin},
	}

	created, err := repo.CreateUser(ctx, want)
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, ok, err := repo.GetUserByUsername(ctx, "leonardo")
	require.NoError(t, err)
	require.True(t, ok)

	want.ID = created.ID
	assert.Equal(t, want, *got)
}

func TestSQLiteUserRepository_DuplicateUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := user.NewSQLiteUserRepository(testutil.OpenTestDB(t))

	u := domain.User{Username: "devdojo", PasswordHash: "x", Authorities: domain.Roles{domain.RoleUser}}

	_, err := repo.CreateUser(ctx, u)
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, u)
	require.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestSQLiteUserRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := user.NewSQLiteUserRepository(testutil.OpenTestDB(t))

	got, ok, err := repo.GetUserByUsername(context.Background(), "nobody")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.False(t, ok)
	assert.Nil(t, got)
}
