package animesvc

import (
	"context"
	"fmt"
	"math"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	"github.com/mkrupp/homecase-anime/internal/repo/anime"
)

// AnimeService is the business façade over the anime store.
type AnimeService struct {
	repo anime.Repository
	cfg  AnimeConfig
	log  logging.Logger
}

// NewAnimeService creates a new AnimeService backed by the repository
// produced by repoFactory.
func NewAnimeService(repoFactory anime.RepositoryFactory, cfg AnimeConfig) (*AnimeService, error) {
	repo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new anime repo: %w", err)
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}

	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	return &AnimeService{
		repo: repo,
		cfg:  cfg,
		log:  logging.GetLogger("svc.animesvc.anime_service"),
	}, nil
}

// NormalizePage fills in defaults for a listing request: a negative page
// becomes 0, a non-positive size the default, and oversized requests are
// clamped to the maximum. Pages whose offset would overflow are clamped to
// the last representable page.
func (animeSvc *AnimeService) NormalizePage(req domain.PageRequest) domain.PageRequest {
	if req.Page < 0 {
		req.Page = 0
	}

	switch {
	case req.Size <= 0:
		req.Size = animeSvc.cfg.DefaultPageSize
	case req.Size > animeSvc.cfg.MaxPageSize:
		req.Size = animeSvc.cfg.MaxPageSize
	}

	if maxPage := math.MaxInt / req.Size; req.Page > maxPage {
		req.Page = maxPage
	}

	return req
}

// ListAll returns one page of animes ordered by id.
func (animeSvc *AnimeService) ListAll(ctx context.Context, req domain.PageRequest) (page domain.Page[domain.Anime], err error) {
	req = animeSvc.NormalizePage(req)
	log := animeSvc.log.With(logging.Group("page", "number", req.Page, "size", req.Size))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "anime list failed", "error", err)
		} else {
			log.DebugContext(ctx, "animes listed", "count", page.NumberOfElements)
		}
	}()

	page, err = animeSvc.repo.FindAll(ctx, req)
	if err != nil {
		return domain.Page[domain.Anime]{}, fmt.Errorf("find all: %w", err)
	}

	return page, nil
}

// ListAllNonPageable returns every anime ordered by id.
func (animeSvc *AnimeService) ListAllNonPageable(ctx context.Context) (animes []domain.Anime, err error) {
	defer func() {
		if err != nil {
			animeSvc.log.ErrorContext(ctx, "anime list-all failed", "error", err)
		} else {
			animeSvc.log.DebugContext(ctx, "all animes listed", "count", len(animes))
		}
	}()

	animes, err = animeSvc.repo.FindAllNonPageable(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all: %w", err)
	}

	if animes == nil {
		animes = []domain.Anime{}
	}

	return animes, nil
}

// FindByIDOrThrow returns the anime with id, or domain.ErrAnimeNotFound.
func (animeSvc *AnimeService) FindByIDOrThrow(ctx context.Context, id int64) (found domain.Anime, err error) {
	log := animeSvc.log.With(logging.Group("anime", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "anime fetch failed", "error", err)
		} else {
			log.DebugContext(ctx, "anime fetched")
		}
	}()

	found, ok, err := animeSvc.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("find anime %d: %w", id, err)
	}

	if !ok {
		return domain.Anime{}, fmt.Errorf("find anime %d: %w", id, domain.ErrAnimeNotFound)
	}

	return found, nil
}

// FindByName returns the animes whose name contains fragment. The result is
// never nil.
func (animeSvc *AnimeService) FindByName(ctx context.Context, fragment string) (animes []domain.Anime, err error) {
	log := animeSvc.log.With(logging.Group("anime", "fragment", fragment))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "anime find failed", "error", err)
		} else {
			log.DebugContext(ctx, "animes found", "count", len(animes))
		}
	}()

	animes, err = animeSvc.repo.FindByNameContaining(ctx, fragment)
	if err != nil {
		return nil, fmt.Errorf("find by name: %w", err)
	}

	if animes == nil {
		animes = []domain.Anime{}
	}

	return animes, nil
}

// Save validates req and stores a new anime.
func (animeSvc *AnimeService) Save(ctx context.Context, req domain.AnimePostRequest) (saved domain.Anime, err error) {
	defer func() {
		if err != nil {
			animeSvc.log.WarnContext(ctx, "anime save failed", "error", err)
		} else {
			animeSvc.log.InfoContext(ctx, "anime saved", logging.Group("anime", "id", saved.ID, "name", saved.Name))
		}
	}()

	if err := req.Validate(); err != nil {
		return domain.Anime{}, fmt.Errorf("save anime: %w", err)
	}

	saved, err = animeSvc.repo.Save(ctx, req.Name)
	if err != nil {
		return domain.Anime{}, fmt.Errorf("save anime: %w", err)
	}

	return saved, nil
}

// Replace overwrites the name of an existing anime. The id is preserved.
func (animeSvc *AnimeService) Replace(ctx context.Context, req domain.AnimePutRequest) (err error) {
	log := animeSvc.log.With(logging.Group("anime", "id", req.ID))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "anime replace failed", "error", err)
		} else {
			log.InfoContext(ctx, "anime replaced", "name", req.Name)
		}
	}()

	if err := req.Validate(); err != nil {
		return fmt.Errorf("replace anime: %w", err)
	}

	saved, err := animeSvc.FindByIDOrThrow(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("replace anime: %w", err)
	}

	updated, err := domain.NewAnime(saved.ID, req.Name)
	if err != nil {
		return fmt.Errorf("replace anime %d: %w", saved.ID, err)
	}

	if err := animeSvc.repo.Update(ctx, updated); err != nil {
		return fmt.Errorf("replace anime %d: %w", updated.ID, err)
	}

	return nil
}

// Delete removes the anime with id, or returns domain.ErrAnimeNotFound.
func (animeSvc *AnimeService) Delete(ctx context.Context, id int64) (err error) {
	log := animeSvc.log.With(logging.Group("anime", "id", id))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "anime delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "anime deleted")
		}
	}()

	if err := animeSvc.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete anime %d: %w", id, err)
	}

	return nil
}
