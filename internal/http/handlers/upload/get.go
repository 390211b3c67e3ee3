package upload

import (
	"log/slog"
	"net/http"
	"resumeapi/internal/dto"
	errutils "resumeapi/internal/utils/http_errors"
)

// Policy describes what POST /upload accepts.
func Policy(log *slog.Logger, w http.ResponseWriter, pp PolicyProvider) {
	op := pkg + "Policy"

	policy := pp.Policy()

	response := dto.PolicyResponse{
		AllowedExtensions: policy.AllowedExtensions,
		MaxSize:           policy.MaxSize,
		Storage:           policy.Backend,
	}

	if err := errutils.WriteJSON(w, http.StatusOK, response); err != nil {
		log.Error("failed to write response", slog.String("op", op), slog.String("error", err.Error()))
	}
}
