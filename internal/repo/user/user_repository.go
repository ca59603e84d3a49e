package user

import (
	"context"

	"github.com/mkrupp/homecase-anime/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user and returns it with its generated id.
	// Returns ErrUserAlreadyExists if the username is already taken.
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found. A missing user is reported
	// as an error wrapping ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
