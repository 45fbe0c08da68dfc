package dto

// RegisterRequest captures POST /register payload.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest captures POST /login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by both password and Google sign-in.
type TokenResponse struct {
	AccessToken     string `json:"access_token"`
	TokenType       string `json:"token_type"`
	ProfileComplete bool   `json:"profile_complete"`
	Role            string `json:"role"`
}

// MsgResponse is the short acknowledgement used by register and logout.
type MsgResponse struct {
	Msg string `json:"msg"`
}

// MessageResponse is the generic `{message}` acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
