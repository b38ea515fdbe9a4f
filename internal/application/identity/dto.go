package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// RegisterResult contains the result of a successful registration
type RegisterResult struct {
	User UserInfo
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned by auth operations
type UserInfo struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
	AvatarURL   string
	Verified    bool
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	RefreshToken string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput contains the input for getting current user info
type GetCurrentUserInput struct {
	UserID uuid.UUID
}

// CurrentUserResult contains the current user's information
type CurrentUserResult struct {
	User UserInfo
}

// UpdateProfileInput contains the input for profile updates
type UpdateProfileInput struct {
	UserID      uuid.UUID
	DisplayName string
	AvatarURL   string
}
