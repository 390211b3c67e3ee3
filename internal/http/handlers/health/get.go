package health

import (
	"log/slog"
	"net/http"
	errutils "resumeapi/internal/utils/http_errors"
)

const (
	pkg = "healthHandler/"

	ServiceName = "resume-upload-api"
	Version     = "1.0.0"
)

func Health(log *slog.Logger, w http.ResponseWriter) {
	response := map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	}

	if err := errutils.WriteJSON(w, http.StatusOK, response); err != nil {
		log.Error("failed to write response", slog.String("op", pkg+"Health"), slog.String("error", err.Error()))
	}
}

// Root lists the public entry points.
func Root(log *slog.Logger, w http.ResponseWriter) {
	response := map[string]any{
		"message": "Resume Upload API",
		"version": Version,
		"endpoints": map[string]string{
			"login":  "/auth/login",
			"upload": "/upload (requires authentication)",
			"health": "/health",
		},
	}

	if err := errutils.WriteJSON(w, http.StatusOK, response); err != nil {
		log.Error("failed to write response", slog.String("op", pkg+"Root"), slog.String("error", err.Error()))
	}
}
