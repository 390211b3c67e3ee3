package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"resumeapi/internal/models"
	utils "resumeapi/internal/utils/http_errors"
	"strings"
)

// Auth resolves the bearer token into a user stored in the request context.
func Auth(log *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := pkg + "Auth"

			log := log.With(slog.String("op", op))

			token, ok := bearerToken(r)
			if !ok {
				log.Info("missing bearer token", slog.String("path", r.URL.Path))
				unauthorized(w)
				return
			}

			requester, err := validator.UserByToken(r.Context(), token)
			if err != nil {
				log.Info("failed get user by token", slog.String("error", err.Error()))
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), models.UserContextKey, requester)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	utils.WriteJSONError(w, http.StatusUnauthorized, models.ErrUnauthorized.Error())
}

// UserFromContext returns the user stored by Auth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(models.UserContextKey).(*models.User)
	return user, ok && user != nil
}
