package animesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/homecase-anime/internal/domain"
	"github.com/mkrupp/homecase-anime/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-anime/internal/infra/transport/http"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig

	// Realm is announced in the Basic authentication challenge.
	Realm string `env:"REALM" default:"Realm"`

	// MaxBodySize limits request bodies in bytes.
	MaxBodySize int64 `env:"MAX_BODY_SIZE" default:"1048576"`
}

// HTTPTransport serves the anime REST API.
type HTTPTransport struct {
	animeSvc *AnimeService
	handler  http.Handler
	log      logging.Logger
	cfg      HTTPTransportConfig
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport. Every route is authenticated
// by authenticator and authorized by AccessPolicy.
func NewHTTPTransport(
	animeSvc *AnimeService,
	authenticator http_.Authenticator,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		animeSvc: animeSvc,
		log:      logging.GetLogger("svc.animesvc.http_transport"),
		cfg:      cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /animes", ht.HandleList)
	mux.HandleFunc("GET /animes/all", ht.HandleListAll)
	mux.HandleFunc("GET /animes/find", ht.HandleFind)
	mux.HandleFunc("GET /animes/{id}", ht.HandleGet)
	mux.HandleFunc("POST /animes", ht.HandleCreate)
	mux.HandleFunc("PUT /animes", ht.HandleReplace)
	mux.HandleFunc("DELETE /animes/{id}", ht.HandleDelete)
	mux.HandleFunc("DELETE /animes/admin/{id}", ht.HandleDelete)

	ht.handler = http_.AuthorizingMiddleware(mux, authenticator, AccessPolicy(), cfg.Realm, ht.log)

	return ht
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.handler.ServeHTTP(w, r)
}

func (ht *HTTPTransport) requestLog(r *http.Request) logging.Logger {
	return ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))
}

// HandleList serves GET /animes?page=&size=.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLog(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "anime list failed", "error", err)
		}
	}(r.Context())

	query := r.URL.Query()
	req := domain.PageRequest{
		Page: queryInt(query.Get("page"), 0),
		Size: queryInt(query.Get("size"), 0),
	}

	page, err := ht.animeSvc.ListAll(r.Context(), req)
	if err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("list: %w", err)
	}

	return ht.writeJSON(w, http.StatusOK, page)
}

// HandleListAll serves GET /animes/all.
func (ht *HTTPTransport) HandleListAll(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleListAll(w, r)
}

func (ht *HTTPTransport) handleListAll(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLog(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "anime list-all failed", "error", err)
		}
	}(r.Context())

	animes, err := ht.animeSvc.ListAllNonPageable(r.Context())
	if err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("list all: %w", err)
	}

	return ht.writeJSON(w, http.StatusOK, animes)
}

// HandleFind serves GET /animes/find?name=.
func (ht *HTTPTransport) HandleFind(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleFind(w, r)
}

func (ht *HTTPTransport) handleFind(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLog(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "anime find failed", "error", err)
		}
	}(r.Context())

	animes, err := ht.animeSvc.FindByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("find: %w", err)
	}

	return ht.writeJSON(w, http.StatusOK, animes)
}

// HandleGet serves GET /animes/{id}.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLog(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "anime get failed", "error", err)
		}
	}(r.Context())

	id, err := domain.ParseAnimeID(r.PathValue("id"))
	if err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("parse id: %w", err)
	}

	found, err := ht.animeSvc.FindByIDOrThrow(r.Context(), id)
	if err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("get: %w", err)
	}

	return ht.writeJSON(w, http.StatusOK, found)
}

// HandleCreate serves POST /animes. The created anime is returned together
// with its Location.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLog(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "anime create failed", "error", err)
		}
	}(r.Context())

	var req domain.AnimePostRequest
	if err := ht.decodeBody(w, r, &req); err != nil {
		return err
	}

	saved, err := ht.animeSvc.Save(r.Context(), req)
	if err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("create: %w", err)
	}

	w.Header().Set("Location", "/animes/"+strconv.FormatInt(saved.ID, 10))

	return ht.writeJSON(w, http.StatusCreated, saved)
}

// HandleReplace serves PUT /animes.
func (ht *HTTPTransport) HandleReplace(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleReplace(w, r)
}

func (ht *HTTPTransport) handleReplace(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLog(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "anime replace failed", "error", err)
		}
	}(r.Context())

	var req domain.AnimePutRequest
	if err := ht.decodeBody(w, r, &req); err != nil {
		return err
	}

	if err := ht.animeSvc.Replace(r.Context(), req); err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("replace: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

// HandleDelete serves DELETE /animes/{id} and DELETE /animes/admin/{id}.
// The two routes differ only in the role the access policy demands.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.requestLog(r)

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "anime delete failed", "error", err)
		}
	}(r.Context())

	id, err := domain.ParseAnimeID(r.PathValue("id"))
	if err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("parse id: %w", err)
	}

	if err := ht.animeSvc.Delete(r.Context(), id); err != nil {
		http_.WriteServiceError(w, r, log, err)

		return fmt.Errorf("delete: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)

	return nil
}

func (ht *HTTPTransport) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, ht.cfg.maxBodySize()))

	if err := dec.Decode(v); err != nil {
		http_.WriteError(w, r, http.StatusBadRequest, "Malformed JSON request body")

		return fmt.Errorf("decode body: %w", err)
	}

	return nil
}

func (ht *HTTPTransport) writeJSON(w http.ResponseWriter, status int, v any) error {
	if err := http_.WriteJSON(w, status, v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

func (cfg HTTPTransportConfig) maxBodySize() int64 {
	if cfg.MaxBodySize <= 0 {
		return 1 << 20
	}

	return cfg.MaxBodySize
}

// queryInt parses a query parameter, falling back on absent or invalid input.
func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}

	return n
}
