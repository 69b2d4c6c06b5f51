// Package api exposes the translation pipeline over HTTP: document
// upload, session inspection, and the rendered HTML view.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pagelingo/pagelingo/internal/cache"
	"github.com/pagelingo/pagelingo/internal/config"
	"github.com/pagelingo/pagelingo/internal/domain"
	"github.com/pagelingo/pagelingo/internal/observability"
	"github.com/pagelingo/pagelingo/internal/pipeline"
	"github.com/pagelingo/pagelingo/internal/provider"
	"github.com/pagelingo/pagelingo/internal/render"
	"github.com/pagelingo/pagelingo/internal/session"
	"github.com/pagelingo/pagelingo/internal/store"
	"github.com/pagelingo/pagelingo/internal/viewer"
)

// Server holds the HTTP surface and its dependencies.
type Server struct {
	cfg      *config.Config
	logger   *observability.Logger
	renderer domain.Renderer
	cache    cache.Client
	repo     *store.SessionRepository
	registry *Registry
}

// NewServer creates the API server. cacheClient and repo may be nil.
func NewServer(cfg *config.Config, logger *observability.Logger, cacheClient cache.Client, repo *store.SessionRepository) *Server {
	return &Server{
		cfg: cfg,
		logger: logger.WithComponent("api"),
		renderer: render.NewRenderer(render.Options{
			MaxDimension: cfg.Render.MaxDimension,
			JPEGQuality:  cfg.Render.JPEGQuality,
		}),
		cache:    cacheClient,
		repo:     repo,
		registry: NewRegistry(),
	}
}

// SetRenderer overrides the document renderer. Tests inject a fake here
// to avoid rasterizing real PDFs.
func (s *Server) SetRenderer(r domain.Renderer) {
	s.renderer = r
}

// Router builds the chi router with all routes configured.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(chimiddleware.Timeout(10 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"pagelingo"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.handleUpload)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/sessions/{id}/view", s.handleViewSession)
	})

	return r
}

// handleUpload accepts a PDF (multipart "document" field or raw body)
// and starts an asynchronous translation run.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, err := readDocument(r, s.cfg.Server.MaxUploadBytes)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := render.ValidateDocumentBytes(data); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	transCfg := s.cfg.Translation.Normalize()
	if err := transCfg.Validate(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	prov, err := provider.ForConfig(transCfg, s.logger)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	orch := pipeline.New(pipeline.Options{
		Renderer: s.renderer,
		Provider: prov,
		Config:   transCfg,
		Retry: provider.RetryConfig{
			MaxAttempts: s.cfg.Retry.MaxAttempts,
			Logger:      s.logger,
		},
		Cache:    s.cache,
		CacheTTL: s.cfg.Cache.TTL,
		Store:    s.sessionStore(),
		Notifier: s.registry,
		Logger:   s.logger,
	})

	// Seed the registry so the session is visible before the first page.
	s.registry.SessionUpdated(orch.Session())

	// The run outlives the upload request.
	runCtx := context.WithoutCancel(r.Context())
	go func() {
		if err := orch.ProcessDocument(runCtx, data); err != nil {
			s.logger.Error().Err(err).Str("session_id", orch.SessionID()).Msg("document run failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"session_id": orch.SessionID()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleViewSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.lookupSession(r, chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}

	html, err := viewer.RenderDocument(snap)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

// handleListSessions merges live sessions with ones persisted by earlier
// process lifetimes. The registry wins on ID collision: it is always at
// least as fresh as the stored row.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	type item struct {
		ID         string    `json:"id"`
		State      string    `json:"state"`
		TotalPages int       `json:"total_pages"`
		Done       int       `json:"done"`
		UpdatedAt  time.Time `json:"updated_at"`
	}

	live := s.registry.List()
	seen := make(map[string]bool, len(live))
	items := make([]item, 0, len(live))
	for _, snap := range live {
		seen[snap.ID] = true
		items = append(items, item{
			ID:         snap.ID,
			State:      string(snap.State),
			TotalPages: snap.TotalPages,
			Done:       snap.Done,
			UpdatedAt:  snap.UpdatedAt,
		})
	}

	if s.repo != nil {
		stored, err := s.repo.List(r.Context(), 50)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to list stored sessions")
		}
		for _, sum := range stored {
			if seen[sum.ID] {
				continue
			}
			items = append(items, item{
				ID:         sum.ID,
				State:      sum.State,
				TotalPages: sum.TotalPages,
				Done:       sum.Done,
				UpdatedAt:  sum.UpdatedAt,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"sessions": items})
}

// lookupSession checks the live registry first, falling back to the
// database for sessions from earlier process lifetimes.
func (s *Server) lookupSession(r *http.Request, id string) (session.Snapshot, bool) {
	if snap, ok := s.registry.Get(id); ok {
		return snap, true
	}
	if s.repo != nil {
		if stored, err := s.repo.GetByID(r.Context(), id); err == nil {
			return *stored, true
		}
	}
	return session.Snapshot{}, false
}

func (s *Server) sessionStore() pipeline.Store {
	if s.repo == nil {
		return nil
	}
	return s.repo
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn().Err(err).Int("status", status).Msg("request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// readDocument extracts the uploaded PDF bytes, preferring a multipart
// "document" field and falling back to the raw request body.
func readDocument(r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("document")
		if err != nil {
			return nil, errors.New("multipart upload requires a document field")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty request body")
	}
	return data, nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
