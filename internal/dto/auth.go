package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type MeResponse struct {
	Message  string `json:"message"`
	Username string `json:"user"`
	Email    string `json:"email,omitempty"`
}
