package backoffice

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// Router returns the HTTP API:
//
//	GET    /api/health
//	GET    /api/entities
//	POST   /api/admin/read-only
//	GET    /api/{entity}                       list; published, featured, category, q and filter columns
//	POST   /api/{entity}
//	GET    /api/{entity}/slug/{slug}
//	GET    /api/{entity}/{id}
//	PUT    /api/{entity}/{id}
//	DELETE /api/{entity}/{id}
//	POST   /api/{entity}/{id}/toggle-featured
func (a *App) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(a.logRequests)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/entities", a.handleEntities).Methods(http.MethodGet)
	api.HandleFunc("/admin/read-only", a.handleSetReadOnly).Methods(http.MethodPost)

	api.HandleFunc("/{entity}", a.handleList).Methods(http.MethodGet)
	api.HandleFunc("/{entity}", a.writable(a.handleCreate)).Methods(http.MethodPost)
	api.HandleFunc("/{entity}/slug/{slug}", a.handleGetBySlug).Methods(http.MethodGet)
	api.HandleFunc("/{entity}/{id}", a.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/{entity}/{id}", a.writable(a.handleUpdate)).Methods(http.MethodPut)
	api.HandleFunc("/{entity}/{id}", a.writable(a.handleDelete)).Methods(http.MethodDelete)
	api.HandleFunc("/{entity}/{id}/toggle-featured", a.writable(a.handleToggleFeatured)).Methods(http.MethodPost)

	return router
}

// Run serves the API on the configured port until ctx is cancelled, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	addr := net.JoinHostPort("", a.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("starting back-office server", "addr", ln.Addr().String(), "read_only", a.IsReadOnly())

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start).String())
	})
}
