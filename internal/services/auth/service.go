package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"resumeapi/internal/models"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	pkg = "authService/"

	TokenTypeBearer = "bearer"
)

// dummyHash is compared against when the login is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return hash
})

type AuthService struct {
	log          *slog.Logger
	userProvider UserProvider
	secret       []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func New(
	log *slog.Logger,
	userProvider UserProvider,
	secret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		log:          log,
		userProvider: userProvider,
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

func (a *AuthService) Authenticate(ctx context.Context, login string, password string) (*models.User, error) {
	op := pkg + "Authenticate"

	log := a.log.With(slog.String("op", op))

	log.Debug("attempting to authenticate user")

	user, err := a.userProvider.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			log.Info("user not found")
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}

		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	return user, nil
}

func (a *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	op := pkg + "IssueToken"

	token, expiresAt, err := generateToken(user.Login, a.secret, a.now(), a.tokenTTL)
	if err != nil {
		a.log.Error("failed to sign token", slog.String("op", op), slog.String("error", err.Error()))
		return "", time.Time{}, fmt.Errorf("%s: %w: %w", op, models.ErrInternal, err)
	}

	return token, expiresAt, nil
}

func (a *AuthService) Login(ctx context.Context, login string, password string) (*models.Token, error) {
	op := pkg + "Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.Authenticate(ctx, login, password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, _, err := a.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("user logged in successfully", slog.String("login", user.Login))

	return &models.Token{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(a.tokenTTL / time.Second),
	}, nil
}

func (a *AuthService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	op := pkg + "UserByToken"

	log := a.log.With(slog.String("op", op))

	login, err := subjectFromToken(token, a.secret, a.now)
	if err != nil {
		log.Info("rejected token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	user, err := a.userProvider.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("token subject does not resolve", slog.String("login", login))
		} else {
			log.Error("failed to get user", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	return user, nil
}
