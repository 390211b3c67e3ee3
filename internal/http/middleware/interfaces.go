package middleware

import (
	"context"
	"resumeapi/internal/models"
)

const pkg = "middleware/"

type TokenValidator interface {
	UserByToken(ctx context.Context, token string) (*models.User, error)
}
