// Package server exposes an editor session over HTTP. Mutations are JSON
// endpoints; every committed gesture is pushed to websocket clients on /ws.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

const shutdownTimeout = 5 * time.Second

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderers replaces the renderer registry used by /api/render and
// /preview. Defaults to render.NewDefaultRegistry.
func WithRenderers(reg *render.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.renderers = reg
		}
	}
}

// WithTitle sets the title passed to renderers when the request has none.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// Server wires a session to a chi router and a websocket hub.
type Server struct {
	session     *editor.Session
	renderers   *render.Registry
	hub         *Hub
	logger      *zap.Logger
	title       string
	router      chi.Router
	unsubscribe func()
}

// New builds a server for session and subscribes its hub to the session.
// Call Close to detach it.
func New(session *editor.Session, opts ...Option) (*Server, error) {
	if session == nil {
		return nil, errors.New("server: session is required")
	}
	s := &Server{
		session: session,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderers == nil {
		reg, err := render.NewDefaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("server: renderers: %w", err)
		}
		s.renderers = reg
	}
	s.hub = NewHub(session.Snapshot, s.logger)
	s.unsubscribe = session.Subscribe(s.hub.Publish)
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Close detaches the hub from the session and disconnects its clients.
func (s *Server) Close() {
	s.unsubscribe()
	s.hub.Close()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/preview", s.handlePreview)
	r.Handle("/ws", s.hub)

	r.Route("/api", func(r chi.Router) {
		r.Get("/form", s.handleGetForm)
		r.Delete("/form", s.handleReset)

		r.Post("/fields", s.handleAddField)
		r.Patch("/fields/{id}", s.handleUpdateField)
		r.Put("/fields/{id}/value", s.handleSetValue)
		r.Post("/fields/{id}/ungroup", s.handleFieldUngroup)

		r.Post("/groups", s.handleAddGroup)
		r.Patch("/groups/{id}", s.handleRenameGroup)
		r.Post("/groups/{id}/ungroup", s.handleUngroup)

		r.Delete("/elements/{id}", s.handleDelete)
		r.Post("/moves", s.handleMove)

		r.Route("/drag", func(r chi.Router) {
			r.Post("/start", s.handleDragStart)
			r.Post("/cancel", s.handleDragCancel)
			r.Post("/drop", s.handleDrop)
			r.Post("/reorder", s.handleReorder)
		})

		r.Get("/render", s.handleListFormats)
		r.Get("/render/{format}", s.handleRender)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// Websocket connections are hijacked, so Shutdown does not wait for them.
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
