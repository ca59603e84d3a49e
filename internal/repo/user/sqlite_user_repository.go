package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	"github.com/mkrupp/homecase-anime/internal/repo/database"
)

// SQLiteUserRepository implements Repository on the devdojo_user table.
type SQLiteUserRepository struct {
	db  *database.DB
	log logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepositoryFactory creates a factory function that returns a new SQLiteUserRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteUserRepositoryFactory(db *database.DB) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteUserRepository(db), nil
	}
}

// NewSQLiteUserRepository creates a repository over an already migrated database.
func NewSQLiteUserRepository(db *database.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sqlite_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser using SQLite.
func (r *SQLiteUserRepository) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO devdojo_user (name, username, password, authorities) VALUES (?, ?, ?, ?)",
			user.Name,
			user.Username,
			user.PasswordHash,
			user.Authorities.String(),
		)
		if err != nil {
			var liteErr *sqlite.Error
			if errors.As(err, &liteErr) {
				switch liteErr.Code() {
				case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
					err = errors.Join(domain.ErrUserAlreadyExists, err)
				default:
				}
			}

			return fmt.Errorf("insert user: %w", err)
		}

		if user.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err //nolint:wrapcheck
	}

	return user, nil
}

// GetUserByUsername implements Repository.GetUserByUsername using SQLite.
func (r *SQLiteUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	var (
		user        domain.User
		authorities string
	)

	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, username, password, authorities FROM devdojo_user WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Name, &user.Username, &user.PasswordHash, &authorities)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	user.Authorities = domain.ParseAuthorities(authorities)

	return &user, true, nil
}
