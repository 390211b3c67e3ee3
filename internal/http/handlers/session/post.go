package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"resumeapi/internal/dto"
	"resumeapi/internal/models"
	utils "resumeapi/internal/utils/http_errors"
)

const maxLoginBody = 1 << 20

func Add(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, auth Authenticator) {
	op := pkg + "Add"

	log = log.With(slog.String("op", op))

	var loginRequest dto.LoginRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&loginRequest); err != nil {
		log.Warn("unmarshal body", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidParams.Error())
		return
	}
	defer r.Body.Close()

	if loginRequest.Username == "" || loginRequest.Password == "" {
		log.Warn("empty username or password")
		utils.WriteJSONError(w, http.StatusBadRequest, models.ErrInvalidParams.Error())
		return
	}

	log.Info("login attempt", slog.String("login", loginRequest.Username))

	token, err := auth.Login(ctx, loginRequest.Username, loginRequest.Password)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			log.Warn("failed login attempt", slog.String("login", loginRequest.Username))
			w.Header().Set("WWW-Authenticate", "Bearer")
			utils.WriteJSONError(w, http.StatusUnauthorized, models.ErrInvalidCredentials.Error())
			return
		}
		log.Error("failed to login", slog.String("error", err.Error()))
		utils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	response := dto.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	}

	if err := utils.WriteJSON(w, http.StatusOK, response); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
