package session

import (
	"context"
	"resumeapi/internal/models"
)

const pkg = "sessionHandler/"

type Authenticator interface {
	Login(ctx context.Context, login string, password string) (*models.Token, error)
}
