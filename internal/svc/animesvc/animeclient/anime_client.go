package animeclient

import (
	"context"

	"github.com/mkrupp/homecase-anime/internal/domain"
)

// AnimeClient defines the operations offered by the anime REST API.
type AnimeClient interface {
	// List returns one page of animes.
	List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Anime], error)

	// ListAll returns every anime.
	ListAll(ctx context.Context) ([]domain.Anime, error)

	// Get returns the anime with id. Fails with domain.ErrAnimeNotFound if absent.
	Get(ctx context.Context, id int64) (domain.Anime, error)

	// Find returns the animes whose name contains fragment.
	Find(ctx context.Context, fragment string) ([]domain.Anime, error)

	// Create stores a new anime and returns it with its assigned id.
	Create(ctx context.Context, name string) (domain.Anime, error)

	// Replace overwrites the name of an existing anime.
	Replace(ctx context.Context, anime domain.Anime) error

	// Delete removes an anime through the route open to every user.
	Delete(ctx context.Context, id int64) error

	// AdminDelete removes an anime through the admin-only route.
	AdminDelete(ctx context.Context, id int64) error
}
