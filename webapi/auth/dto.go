package auth

// LoginInput represents the request body for signing in.
type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
}

// RegisterInput represents the request body for creating a user record.
type RegisterInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=120"`
}

// SessionResponse describes the signed-in identity and the sync state.
type SessionResponse struct {
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status"`
}

// TokenResponse is returned on sign in. Token is empty when no signing key is
// configured.
type TokenResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}
