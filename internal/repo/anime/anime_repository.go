package anime

import (
	"context"

	"github.com/mkrupp/homecase-anime/internal/domain"
)

// Repository defines the interface for anime persistence.
type Repository interface {
	// FindAll returns one page of animes ordered by id.
	FindAll(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Anime], error)

	// FindAllNonPageable returns every anime ordered by id.
	FindAllNonPageable(ctx context.Context) ([]domain.Anime, error)

	// FindByID returns the anime and true if found, or false if absent.
	FindByID(ctx context.Context, id int64) (domain.Anime, bool, error)

	// FindByNameContaining returns animes whose name contains fragment
	// (case-sensitive). An empty fragment matches nothing.
	FindByNameContaining(ctx context.Context, fragment string) ([]domain.Anime, error)

	// Save inserts a new anime and returns it with its generated id.
	Save(ctx context.Context, name string) (domain.Anime, error)

	// Update overwrites the name of an existing anime.
	// Returns domain.ErrAnimeNotFound if no anime has the given id.
	Update(ctx context.Context, anime domain.Anime) error

	// DeleteByID removes an anime.
	// Returns domain.ErrAnimeNotFound if no anime has the given id.
	DeleteByID(ctx context.Context, id int64) error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
