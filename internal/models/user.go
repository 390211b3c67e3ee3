package models

type contextKey string

const UserContextKey contextKey = "user"

type User struct {
	Login    string `json:"username"`
	Email    string `json:"email,omitempty"`
	PassHash []byte `json:"-"`
}

type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}
