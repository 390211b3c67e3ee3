package session

import (
	"log/slog"
	"net/http"
	"resumeapi/internal/dto"
	"resumeapi/internal/http/middleware"
	"resumeapi/internal/models"
	utils "resumeapi/internal/utils/http_errors"
)

// Me reports the user the bearer token belongs to.
func Me(log *slog.Logger, w http.ResponseWriter, r *http.Request) {
	op := pkg + "Me"

	log = log.With(slog.String("op", op))

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		log.Error("no user in request context")
		utils.WriteJSONError(w, http.StatusUnauthorized, models.ErrUnauthorized.Error())
		return
	}

	response := dto.MeResponse{
		Message:  "Authentication successful",
		Username: user.Login,
		Email:    user.Email,
	}

	if err := utils.WriteJSON(w, http.StatusOK, response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
