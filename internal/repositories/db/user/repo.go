package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"resumeapi/internal/entities"
	"resumeapi/internal/models"

	"github.com/jmoiron/sqlx"
)

const pkg = "userRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	op := pkg + "UserByLogin"

	rawUser := entities.User{}

	err := r.db.GetContext(ctx, &rawUser,
		`SELECT
			u.login AS login,
			u.email AS email,
			u.pass_hash AS pass_hash
		FROM users u
		WHERE u.login = $1`, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.User{
		Login:    rawUser.Login,
		Email:    rawUser.Email.String,
		PassHash: rawUser.PassHash,
	}, nil
}
