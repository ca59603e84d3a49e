package animesvc_test

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Pallinder/go-randomdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/repo/anime"
	"github.com/mkrupp/homecase-anime/internal/svc/animesvc"
)

var ErrRepoError = errors.New("repository error")

// mockAnimeRepository implements anime.Repository in memory.
type mockAnimeRepository struct {
	animes   map[int64]domain.Anime
	nextID   int64
	lastPage domain.PageRequest
	err      error
	m        sync.Mutex
}

func newMockAnimeRepository() *mockAnimeRepository {
	return &mockAnimeRepository{animes: make(map[int64]domain.Anime)}
}

func (m *mockAnimeRepository) sorted() []domain.Anime {
	out := make([]domain.Anime, 0, len(m.animes))
	for _, a := range m.animes {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (m *mockAnimeRepository) FindAll(_ context.Context, page domain.PageRequest) (domain.Page[domain.Anime], error) {
	m.m.Lock()
	defer m.m.Unlock()

	m.lastPage = page

	if m.err != nil {
		return domain.Page[domain.Anime]{}, m.err
	}

	all := m.sorted()
	start := min(page.Offset(), len(all))
	end := min(start+page.Size, len(all))

	return domain.NewPage(all[start:end], page, int64(len(all))), nil
}

func (m *mockAnimeRepository) FindAllNonPageable(context.Context) ([]domain.Anime, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	if len(m.animes) == 0 {
		return nil, nil
	}

	return m.sorted(), nil
}

func (m *mockAnimeRepository) FindByID(_ context.Context, id int64) (domain.Anime, bool, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return domain.Anime{}, false, m.err
	}

	a, ok := m.animes[id]

	return a, ok, nil
}

func (m *mockAnimeRepository) FindByNameContaining(_ context.Context, fragment string) ([]domain.Anime, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	var out []domain.Anime

	for _, a := range m.sorted() {
		if fragment != "" && strings.Contains(a.Name, fragment) {
			out = append(out, a)
		}
	}

	return out, nil
}

func (m *mockAnimeRepository) Save(_ context.Context, name string) (domain.Anime, error) {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return domain.Anime{}, m.err
	}

	m.nextID++
	a := domain.Anime{ID: m.nextID, Name: name}
	m.animes[a.ID] = a

	return a, nil
}

func (m *mockAnimeRepository) Update(_ context.Context, a domain.Anime) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}

	if _, ok := m.animes[a.ID]; !ok {
		return domain.ErrAnimeNotFound
	}

	m.animes[a.ID] = a

	return nil
}

func (m *mockAnimeRepository) DeleteByID(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()

	if m.err != nil {
		return m.err
	}

	if _, ok := m.animes[id]; !ok {
		return domain.ErrAnimeNotFound
	}

	delete(m.animes, id)

	return nil
}

func (m *mockAnimeRepository) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()

	m.err = err
}

func setupTestService(t *testing.T) (*animesvc.AnimeService, *mockAnimeRepository) {
	t.Helper()

	mockRepo := newMockAnimeRepository()

	svc, err := animesvc.NewAnimeService(func() (anime.Repository, error) {
		return mockRepo, nil
	}, animesvc.AnimeConfig{DefaultPageSize: 20, MaxPageSize: 2000})
	require.NoError(t, err)

	return svc, mockRepo
}

func TestNewAnimeService_FactoryError(t *testing.T) {
	t.Parallel()

	_, err := animesvc.NewAnimeService(func() (anime.Repository, error) {
		return nil, ErrRepoError
	}, animesvc.AnimeConfig{})
	require.ErrorIs(t, err, ErrRepoError)
}

func TestAnimeService_NormalizePage(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	tests := []struct {
		in, want domain.PageRequest
	}{
		{in: domain.PageRequest{}, want: domain.PageRequest{Page: 0, Size: 20}},
		{in: domain.PageRequest{Page: -3, Size: -1}, want: domain.PageRequest{Page: 0, Size: 20}},
		{in: domain.PageRequest{Page: 2, Size: 5}, want: domain.PageRequest{Page: 2, Size: 5}},
		{in: domain.PageRequest{Page: 1, Size: 100000}, want: domain.PageRequest{Page: 1, Size: 2000}},
		{in: domain.PageRequest{Page: math.MaxInt, Size: 20}, want: domain.PageRequest{Page: math.MaxInt / 20, Size: 20}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.NormalizePage(tt.in))
	}
}

func TestAnimeService_ListAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mockRepo := setupTestService(t)

	for range 25 {
		_, err := svc.Save(ctx, domain.AnimePostRequest{Name: randomdata.SillyName()})
		require.NoError(t, err)
	}

	page, err := svc.ListAll(ctx, domain.PageRequest{Page: 1})
	require.NoError(t, err)

	assert.Equal(t, domain.PageRequest{Page: 1, Size: 20}, mockRepo.lastPage)
	assert.Len(t, page.Content, 5)
	assert.Equal(t, int64(25), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.Last)
	assert.False(t, page.First)

	mockRepo.setErr(ErrRepoError)

	_, err = svc.ListAll(ctx, domain.PageRequest{})
	require.ErrorIs(t, err, ErrRepoError)
}

func TestAnimeService_ListAllNonPageable_Empty(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	animes, err := svc.ListAllNonPageable(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, animes)
	assert.Empty(t, animes)
}

func TestAnimeService_FindByIDOrThrow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mockRepo := setupTestService(t)

	saved, err := svc.Save(ctx, domain.AnimePostRequest{Name: "Berserk"})
	require.NoError(t, err)

	found, err := svc.FindByIDOrThrow(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, found)

	_, err = svc.FindByIDOrThrow(ctx, saved.ID+1)
	require.ErrorIs(t, err, domain.ErrAnimeNotFound)

	mockRepo.setErr(ErrRepoError)

	_, err = svc.FindByIDOrThrow(ctx, saved.ID)
	require.ErrorIs(t, err, ErrRepoError)
	assert.NotErrorIs(t, err, domain.ErrAnimeNotFound)
}

func TestAnimeService_FindByName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupTestService(t)

	for _, name := range []string{"Naruto", "Naruto Shippuden", "Bleach"} {
		_, err := svc.Save(ctx, domain.AnimePostRequest{Name: name})
		require.NoError(t, err)
	}

	found, err := svc.FindByName(ctx, "Naruto")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.FindByName(ctx, "One Piece")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestAnimeService_Save(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, mockRepo := setupTestService(t)

	tests := []struct {
		name    string
		req     domain.AnimePostRequest
		repoErr error
		wantErr error
	}{
		{name: "valid", req: domain.AnimePostRequest{Name: "Samurai X"}},
		{name: "empty name", req: domain.AnimePostRequest{}, wantErr: domain.ErrValidation},
		{name: "repository error", req: domain.AnimePostRequest{Name: "Trigun"}, repoErr: ErrRepoError, wantErr: ErrRepoError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.setErr(tt.repoErr)
			t.Cleanup(func() { mockRepo.setErr(nil) })

			saved, err := svc.Save(ctx, tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Positive(t, saved.ID)
			assert.Equal(t, tt.req.Name, saved.Name)
		})
	}
}

func TestAnimeService_Replace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupTestService(t)

	saved, err := svc.Save(ctx, domain.AnimePostRequest{Name: "Samurai X"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     domain.AnimePutRequest
		wantErr error
	}{
		{name: "valid", req: domain.AnimePutRequest{ID: saved.ID, Name: "Samurai X 2"}},
		{name: "missing id", req: domain.AnimePutRequest{ID: saved.ID + 100, Name: "Ghost"}, wantErr: domain.ErrAnimeNotFound},
		{name: "zero id", req: domain.AnimePutRequest{Name: "Ghost"}, wantErr: domain.ErrValidation},
		{name: "empty name", req: domain.AnimePutRequest{ID: saved.ID}, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Replace(ctx, tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			found, err := svc.FindByIDOrThrow(ctx, tt.req.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.Anime{ID: tt.req.ID, Name: tt.req.Name}, found)
		})
	}
}

func TestAnimeService_Delete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupTestService(t)

	saved, err := svc.Save(ctx, domain.AnimePostRequest{Name: "Cowboy Bebop"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, saved.ID))
	require.ErrorIs(t, svc.Delete(ctx, saved.ID), domain.ErrAnimeNotFound)

	_, err = svc.FindByIDOrThrow(ctx, saved.ID)
	require.ErrorIs(t, err, domain.ErrAnimeNotFound)
}
