package staticuserrepo

import (
	"context"
	"errors"
	"fmt"
	"resumeapi/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const pkg = "staticUserRepo/"

// repository holds the single account the service knows about. It is built
// once at startup and never mutated, so concurrent reads need no locking.
type repository struct {
	user models.User
}

func New(login, email, password string) (*repository, error) {
	op := pkg + "New"

	if login == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("login and password are required"))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &repository{
		user: models.User{
			Login:    login,
			Email:    email,
			PassHash: passHash,
		},
	}, nil
}

func (r *repository) UserByLogin(_ context.Context, login string) (*models.User, error) {
	if login != r.user.Login {
		return nil, models.ErrUserNotFound
	}

	user := r.user
	return &user, nil
}
