package anime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	"github.com/mkrupp/homecase-anime/internal/repo/database"
)

// SQLiteAnimeRepository implements Repository on the anime table.
type SQLiteAnimeRepository struct {
	db  *database.DB
	log logging.Logger
}

var _ Repository = (*SQLiteAnimeRepository)(nil)

// SQLiteAnimeRepositoryFactory returns a RepositoryFactory bound to db.
func SQLiteAnimeRepositoryFactory(db *database.DB) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteAnimeRepository(db), nil
	}
}

// NewSQLiteAnimeRepository creates a repository over an already migrated database.
func NewSQLiteAnimeRepository(db *database.DB) *SQLiteAnimeRepository {
	return &SQLiteAnimeRepository{
		db:  db,
		log: logging.GetLogger("repo.anime.sqlite_anime_repository"),
	}
}

// FindAll implements Repository.FindAll.
func (r *SQLiteAnimeRepository) FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Anime], error) {
	var total int64

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM anime").Scan(&total); err != nil {
		return domain.Page[domain.Anime]{}, fmt.Errorf("count animes: %w", err)
	}

	animes, err := r.query(ctx,
		"SELECT id, name FROM anime ORDER BY id LIMIT ? OFFSET ?",
		page.Size, page.Offset(),
	)
	if err != nil {
		return domain.Page[domain.Anime]{}, err
	}

	return domain.NewPage(animes, page, total), nil
}

// FindAllNonPageable implements Repository.FindAllNonPageable.
func (r *SQLiteAnimeRepository) FindAllNonPageable(ctx context.Context) ([]domain.Anime, error) {
	return r.query(ctx, "SELECT id, name FROM anime ORDER BY id")
}

// FindByID implements Repository.FindByID.
func (r *SQLiteAnimeRepository) FindByID(ctx context.Context, id int64) (domain.Anime, bool, error) {
	var anime domain.Anime

	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM anime WHERE id = ?", id).
		Scan(&anime.ID, &anime.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Anime{}, false, nil
		}

		return domain.Anime{}, false, fmt.Errorf("query anime: %w", err)
	}

	return anime, true, nil
}

// FindByNameContaining implements Repository.FindByNameContaining.
// instr() is used instead of LIKE, which is case-insensitive for ASCII in SQLite.
func (r *SQLiteAnimeRepository) FindByNameContaining(ctx context.Context, fragment string) ([]domain.Anime, error) {
	if fragment == "" {
		return []domain.Anime{}, nil
	}

	return r.query(ctx, "SELECT id, name FROM anime WHERE instr(name, ?) > 0 ORDER BY id", fragment)
}

// Save implements Repository.Save.
func (r *SQLiteAnimeRepository) Save(ctx context.Context, name string) (domain.Anime, error) {
	var anime domain.Anime

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO anime (name) VALUES (?)", name)
		if err != nil {
			return fmt.Errorf("insert anime: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		anime = domain.Anime{ID: id, Name: name}

		return nil
	})
	if err != nil {
		return domain.Anime{}, err //nolint:wrapcheck
	}

	r.log.DebugContext(ctx, "anime inserted", logging.Group("anime", "id", anime.ID))

	return anime, nil
}

// Update implements Repository.Update.
func (r *SQLiteAnimeRepository) Update(ctx context.Context, anime domain.Anime) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE anime SET name = ? WHERE id = ?", anime.Name, anime.ID)
		if err != nil {
			return fmt.Errorf("update anime: %w", err)
		}

		return requireAffected(res)
	})
}

// DeleteByID implements Repository.DeleteByID.
func (r *SQLiteAnimeRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM anime WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete anime: %w", err)
		}

		return requireAffected(res)
	})
}

func (r *SQLiteAnimeRepository) query(ctx context.Context, query string, args ...any) ([]domain.Anime, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query animes: %w", err)
	}
	defer rows.Close()

	animes := []domain.Anime{}

	for rows.Next() {
		var anime domain.Anime
		if err := rows.Scan(&anime.ID, &anime.Name); err != nil {
			return nil, fmt.Errorf("scan anime: %w", err)
		}

		animes = append(animes, anime)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate animes: %w", err)
	}

	return animes, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return domain.ErrAnimeNotFound
	}

	return nil
}
