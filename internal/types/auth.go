package types

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

// LoginResponse represents the successful JSON response after login.
type LoginResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJI..."`
	RefreshToken string `json:"refresh_token" example:"4f1trt8s..."`
	Message      string `json:"message" example:"Login successful"`
}

// RegisterRequest represents the expected JSON body for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required" example:"mariasilva"`
	Email    string `json:"email" validate:"required,email" example:"maria@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"Str0ngP@ss!"`
	FullName string `json:"full_name,omitempty" example:"Maria Silva"`
}

// RefreshTokenRequest represents the expected JSON body for refreshing tokens.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"4f1trt8s..."`
}

// TokenResponse represents the successful JSON response after refreshing tokens.
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJI..."`
	RefreshToken string `json:"refresh_token" example:"9a8b7c..."`
}

// LogoutRequest represents the expected JSON body for logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
