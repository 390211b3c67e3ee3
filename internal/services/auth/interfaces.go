package authservice

import (
	"context"
	"resumeapi/internal/models"
)

type UserProvider interface {
	UserByLogin(ctx context.Context, login string) (*models.User, error)
}
