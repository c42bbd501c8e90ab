package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuth represents the core user entity in the domain.
type UserAuth struct {
	ID          string     `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"` // Unique identifier (UUID).
	Username    string     `json:"username" example:"mariasilva"`                     // Optional unique username.
	Email       string     `json:"email" example:"maria.silva@example.com"`           // Unique email address used for login.
	Password    string     `json:"-"`                                                 // Hashed password (never exposed).
	DisplayName string     `json:"display_name,omitempty" example:"Maria Silva"`      // Name shown in the dashboard.
	Role        string     `json:"role" example:"user"`                               // User role (e.g., 'user', 'admin').
	SignupDate  *time.Time `json:"signup_date,omitempty"`                             // Stamped once by provisioning; nil until then.
	IsActive    bool       `json:"is_active"`                                         // Soft-delete / deactivation flag.
	CreatedAt   time.Time  `json:"created_at"`                                        // Timestamp when the user was created.
	UpdatedAt   time.Time  `json:"updated_at"`                                        // Timestamp when the user was last updated.
}

// UserProfile is the dashboard-facing view of a user.
type UserProfile struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name,omitempty"`
	Role        string     `json:"role"`
	SignupDate  *time.Time `json:"signup_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UpdateProfileParams carries the mutable profile fields. Nil means "leave unchanged".
type UpdateProfileParams struct {
	Username    *string `json:"username,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// Claims represents the custom claims included in the JWT access token.
type Claims struct {
	UserID               string `json:"uid"`           // Custom claim for User ID.
	Username             string `json:"usr,omitempty"` // Custom claim for Username.
	Email                string `json:"eml"`           // Custom claim for Email.
	Role                 string `json:"rol"`           // Custom claim for User Role.
	jwt.RegisteredClaims        // Embed standard claims (ExpiresAt, IssuedAt, Subject, etc.).
}

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Operation successful"`
	Error   string `json:"error,omitempty" example:"Resource not found"`
}
