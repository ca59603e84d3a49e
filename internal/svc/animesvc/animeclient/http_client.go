package animeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkrupp/homecase-anime/internal/domain"
	context_ "github.com/mkrupp/homecase-anime/internal/infra/context"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-anime/internal/infra/transport/http"
)

// ErrForbidden is reported when the server refuses the caller's role.
var ErrForbidden = errors.New("access denied")

// HTTPClientConfig holds configuration for the HTTP anime client.
type HTTPClientConfig struct {
	// BaseURL is the root of the anime service
	BaseURL string `env:"BASE_URL" default:"http://localhost:8080"`

	Username string `env:"USERNAME" default:""`
	Password string `env:"PASSWORD" default:""`

	// Timeout bounds every request
	Timeout time.Duration `env:"TIMEOUT" default:"10s"`
}

// APIError is a non-2xx answer from the anime service.
type APIError struct {
	Status   int
	Response http_.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Response.Message)
	}

	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Is maps the status code back onto the domain errors the server translated.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusBadRequest:
		return target == domain.ErrValidation //nolint:errorlint
	case http.StatusNotFound:
		return target == domain.ErrAnimeNotFound //nolint:errorlint
	case http.StatusUnauthorized:
		return target == domain.ErrInvalidCredentials //nolint:errorlint
	case http.StatusForbidden:
		return target == ErrForbidden //nolint:errorlint
	default:
		return false
	}
}

// HTTPClient implements AnimeClient over HTTP with Basic credentials.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ AnimeClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, a client with cfg.Timeout is used.
func NewHTTPClient(
	cfg HTTPClientConfig,
	httpClient *http.Client,
) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout} //nolint:exhaustruct
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.animesvc.animeclient.http_client"),
		cfg:        cfg,
	}
}

// List implements AnimeClient.List.
func (c *HTTPClient) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Anime], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page.Page))

	if page.Size > 0 {
		query.Set("size", strconv.Itoa(page.Size))
	}

	var out domain.Page[domain.Anime]
	if err := c.do(ctx, http.MethodGet, "/animes?"+query.Encode(), nil, http.StatusOK, &out); err != nil {
		return domain.Page[domain.Anime]{}, err
	}

	return out, nil
}

// ListAll implements AnimeClient.ListAll.
func (c *HTTPClient) ListAll(ctx context.Context) ([]domain.Anime, error) {
	var out []domain.Anime
	if err := c.do(ctx, http.MethodGet, "/animes/all", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Get implements AnimeClient.Get.
func (c *HTTPClient) Get(ctx context.Context, id int64) (domain.Anime, error) {
	var out domain.Anime
	if err := c.do(ctx, http.MethodGet, animePath(id), nil, http.StatusOK, &out); err != nil {
		return domain.Anime{}, err
	}

	return out, nil
}

// Find implements AnimeClient.Find.
func (c *HTTPClient) Find(ctx context.Context, fragment string) ([]domain.Anime, error) {
	query := url.Values{}
	query.Set("name", fragment)

	var out []domain.Anime
	if err := c.do(ctx, http.MethodGet, "/animes/find?"+query.Encode(), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// Create implements AnimeClient.Create.
func (c *HTTPClient) Create(ctx context.Context, name string) (domain.Anime, error) {
	var out domain.Anime

	err := c.do(ctx, http.MethodPost, "/animes", domain.AnimePostRequest{Name: name}, http.StatusCreated, &out)
	if err != nil {
		return domain.Anime{}, err
	}

	return out, nil
}

// Replace implements AnimeClient.Replace.
func (c *HTTPClient) Replace(ctx context.Context, anime domain.Anime) error {
	return c.do(ctx, http.MethodPut, "/animes",
		domain.AnimePutRequest{ID: anime.ID, Name: anime.Name}, http.StatusNoContent, nil)
}

// Delete implements AnimeClient.Delete.
func (c *HTTPClient) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, animePath(id), nil, http.StatusNoContent, nil)
}

// AdminDelete implements AnimeClient.AdminDelete.
func (c *HTTPClient) AdminDelete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/animes/admin/"+strconv.FormatInt(id, 10), nil, http.StatusNoContent, nil)
}

func animePath(id int64) string {
	return "/animes/" + strconv.FormatInt(id, 10)
}

// do sends one request and decodes the answer into out when the expected
// status comes back. Any other status becomes an *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, want int, out any) (err error) {
	log := c.log.With(logging.Group("http", "method", method, "path", path))

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "anime request failed", "error", err)
		} else {
			log.DebugContext(ctx, "anime request done")
		}
	}()

	var reader io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")

	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		req.Header.Set(http_.TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode} //nolint:exhaustruct
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Response)

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
