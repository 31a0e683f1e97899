// Package http is a demo host for the engine: it keeps live pages, applies
// posted events between the two hooks and answers with HTML fragments of the
// boundaries that changed.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/postman"
	"github.com/aretw0/postman/internal/dto"
	"github.com/aretw0/postman/internal/presentation/graph"
	"github.com/aretw0/postman/pkg/adapters/memory"
	"github.com/aretw0/postman/pkg/domain"
	"github.com/aretw0/postman/pkg/session"
)

// Server serves pages managed by a session.Manager.
type Server struct {
	Engine  *postman.Engine
	Pages   *session.Manager
	Streams *StreamManager
	Classes graph.Classes

	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithClasses sets how /graph classifies nodes; it should mirror the engine policies.
func WithClasses(c graph.Classes) Option {
	return func(s *Server) {
		s.Classes = c
	}
}

// EventRequest is the body of POST /pages/{page}/events.
type EventRequest struct {
	Mutations []dto.Mutation `json:"mutations"`
}

// EventResponse is returned when the client asks for JSON.
type EventResponse struct {
	Report    *domain.Report    `json:"report"`
	Fragments map[string]string `json:"fragments"`
}

// NewHandler creates the HTTP handler.
func NewHandler(engine *postman.Engine, pages *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		Pages:  pages,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Route("/pages/{page}", func(r chi.Router) {
		r.Get("/", s.GetPage)
		r.Post("/events", s.PostEvent)
		r.Get("/stream", s.SubscribeEvents)
		r.Get("/graph", s.GetGraph)
	})
	r.Get("/reports", s.ListReports)
	r.Get("/reports/{id}", s.GetReport)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// GetPage renders the full page. A first request builds the page.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")
	err := s.Pages.WithPage(r.Context(), pageID, func(ctx context.Context, page *memory.Component) error {
		templ.Handler(pageView(page)).ServeHTTP(w, r)
		return nil
	})
	if err != nil {
		s.fail(w, "GetPage", err)
	}
}

// PostEvent runs one request against the page: arm, apply mutations, resolve.
// The response holds only the boundaries that need re-rendering, as HTML
// out-of-band fragments, or as JSON when the client accepts it.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")

	var body EventRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("PostEvent: invalid request body", "err", err)
		return
	}

	var (
		report    *domain.Report
		fragments []*memory.Component
	)
	err := s.Pages.WithPage(r.Context(), pageID, func(ctx context.Context, page *memory.Component) error {
		page.Reset()
		var err error
		report, err = s.Engine.Process(ctx, page, func(context.Context) error {
			return apply(page, body.Mutations)
		})
		if err != nil {
			return err
		}
		fragments = dirtyBoundaries(page)

		if s.wantsJSON(r) {
			resp := EventResponse{Report: report, Fragments: make(map[string]string, len(fragments))}
			for _, b := range fragments {
				html, err := templ.ToGoHTML(ctx, componentView(b))
				if err != nil {
					return err
				}
				resp.Fragments[b.ID()] = string(html)
			}
			writeJSON(w, s.logger, http.StatusOK, resp)
			return nil
		}
		templ.Handler(fragmentsView(fragments)).ServeHTTP(w, r)
		return nil
	})
	if err != nil {
		s.fail(w, "PostEvent", err)
		return
	}

	if msg, err := json.Marshal(report); err == nil {
		s.Streams.Broadcast(pageID, string(msg))
	}
}

// SubscribeEvents streams the report of every request on the page (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	pageID := chi.URLParam(r, "page")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(pageID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: report\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// GetGraph renders the live page as a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")
	err := s.Pages.WithPage(r.Context(), pageID, func(ctx context.Context, page *memory.Component) error {
		var overlay graph.Overlay
		for _, b := range dirtyBoundaries(page) {
			overlay.DirtyIDs = append(overlay.DirtyIDs, b.ID())
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err := io.WriteString(w, graph.GenerateMermaid(page, s.Classes, &overlay))
		return err
	})
	if err != nil {
		s.fail(w, "GetGraph", err)
	}
}

// ListReports handles GET /reports.
func (s *Server) ListReports(w http.ResponseWriter, r *http.Request) {
	store := s.Engine.Store()
	if store == nil {
		http.Error(w, "No report store configured", http.StatusNotFound)
		return
	}
	ids, err := store.List(r.Context())
	if err != nil {
		s.fail(w, "ListReports", err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, ids)
}

// GetReport handles GET /reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	store := s.Engine.Store()
	if store == nil {
		http.Error(w, "No report store configured", http.StatusNotFound)
		return
	}
	report, err := store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetReport", err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, report)
}

func (s *Server) wantsJSON(r *http.Request) bool {
	return r.URL.Query().Get("format") == "json" || r.Header.Get("Accept") == "application/json"
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrPageNotFound), errors.Is(err, domain.ErrReportNotFound), errors.Is(err, errUnknownNode):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSerialization):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), status)
	s.logger.Error(op+" failed", "err", err, "status", status)
}

var errUnknownNode = errors.New("unknown node")

// apply resolves every target before changing anything, so a bad event leaves
// the page untouched.
func apply(page *memory.Component, mutations []dto.Mutation) error {
	targets := make([]*memory.Component, len(mutations))
	for i, m := range mutations {
		n, ok := page.Find(m.Node)
		if !ok {
			return fmt.Errorf("%w: %s", errUnknownNode, m.Node)
		}
		targets[i] = n
	}
	for i, m := range mutations {
		for k, v := range m.Set {
			targets[i].Set(k, v)
		}
		for _, k := range m.Delete {
			targets[i].Delete(k)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
