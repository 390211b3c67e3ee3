package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"resumeapi/internal/config"
	"resumeapi/internal/http/handlers/files"
	"resumeapi/internal/http/handlers/health"
	"resumeapi/internal/http/handlers/session"
	"resumeapi/internal/http/handlers/upload"
	"resumeapi/internal/http/middleware"
	"resumeapi/internal/models"
	utils "resumeapi/internal/utils/http_errors"
	"time"

	"github.com/gorilla/mux"
)

func StartServer(
	ctx context.Context,
	cfg *config.HTTPServer,
	log *slog.Logger,
	authService AuthService,
	uploadService UploadService,
) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
		Handler:      NewRouter(log, authService, uploadService),
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("server closed gracefully")
			} else {
				log.Error("could not start server:", "error", err)
				errChan <- err
			}
		}
	}()
	select {
	case <-ctx.Done():
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("error shutting down server", "error", err)
			return err
		}
		log.Info("server exited gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

func NewRouter(log *slog.Logger, auth AuthService, uploads UploadService) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logger(log))

	setupRoutes(r, log, auth, uploads)

	return r
}

func setupRoutes(r *mux.Router, log *slog.Logger, auth AuthService, uploads UploadService) {
	// GET service info
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		health.Root(log, w)
	}).Methods(http.MethodGet)

	// GET health
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health.Health(log, w)
	}).Methods(http.MethodGet)

	// POST session
	r.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session.Add(ctx, log, w, r, auth)
	}).Methods(http.MethodPost)

	protected := r.NewRoute().Subrouter()

	protected.Use(middleware.Auth(log, auth))

	// GET current user
	protected.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		session.Me(log, w, r)
	}).Methods(http.MethodGet)

	// POST upload
	protected.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		upload.Upload(ctx, log, w, r, uploads, uploads)
	}).Methods(http.MethodPost)

	// GET upload policy
	protected.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		upload.Policy(log, w, uploads)
	}).Methods(http.MethodGet)

	// GET file by id; object keys may contain slashes
	protected.HandleFunc("/files/{id:.+}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		files.GetByID(ctx, log, w, vars["id"], uploads)
	}).Methods(http.MethodGet)

	// DELETE file by id
	protected.HandleFunc("/files/{id:.+}", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		vars := mux.Vars(r)
		files.Delete(ctx, log, w, vars["id"], uploads)
	}).Methods(http.MethodDelete)

	// Not found
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusNotFound, models.ErrNotFound.Error())
	})

	// Not allowed
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONError(w, http.StatusMethodNotAllowed, models.ErrMethodNotAllowed.Error())
	})
}
