package authservice

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errEmptySubject = errors.New("token has no subject")

func generateToken(login string, secret []byte, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   login,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// subjectFromToken accepts only HS256 tokens with an expiry in the future.
func subjectFromToken(tokenString string, secret []byte, now func() time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}

	if claims.Subject == "" {
		return "", errEmptySubject
	}

	return claims.Subject, nil
}
