package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modelmart/backend/internal/storefront"
)

// IdentityClient implements storefront.IdentityGateway against the
// /api/v1/auth endpoints. Token never serves a cached access token:
// every call exchanges the refresh token for a fresh one, so the
// credential attached to a submission reflects the session at that
// instant.
type IdentityClient struct {
	client *Client

	mu           sync.Mutex
	refreshToken string
}

// NewIdentityClient creates an identity gateway backed by client.
func NewIdentityClient(client *Client) *IdentityClient {
	return &IdentityClient{client: client}
}

type tokenPayload struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

type authUserPayload struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Verified    bool      `json:"verified"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token tokenPayload    `json:"token"`
	User  authUserPayload `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Token tokenPayload `json:"token"`
}

// SignIn authenticates with email and password and stores the refresh
// token for subsequent Token calls.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (storefront.Principal, error) {
	var out loginResponse
	status, info, err := c.client.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return storefront.Principal{}, fmt.Errorf("sign in: %w", err)
	}
	if status == http.StatusUnauthorized {
		return storefront.Principal{}, storefront.ErrInvalidCredential
	}
	if status < 200 || status >= 300 {
		if info != nil {
			return storefront.Principal{}, fmt.Errorf("sign in failed: %s: %s", info.Code, info.Message)
		}
		return storefront.Principal{}, fmt.Errorf("sign in failed: status %d", status)
	}

	c.mu.Lock()
	c.refreshToken = out.Token.RefreshToken
	c.mu.Unlock()

	return storefront.Principal{
		ID:          out.User.ID,
		Email:       out.User.Email,
		DisplayName: out.User.DisplayName,
		Verified:    out.User.Verified,
	}, nil
}

// SignOut revokes the refresh token on the server and clears it
// locally. The local clear happens even when the server call fails.
func (c *IdentityClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.refreshToken
	c.refreshToken = ""
	c.mu.Unlock()

	if token == "" {
		return nil
	}

	status, info, err := c.client.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", "", refreshRequest{RefreshToken: token}, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if status < 200 || status >= 300 {
		c.client.logger.Warn("server-side logout failed",
			zap.Int("status", status),
			zap.Any("error", info))
	}
	return nil
}

// Token exchanges the stored refresh token for a fresh access token.
func (c *IdentityClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.refreshToken
	c.mu.Unlock()

	if token == "" {
		return "", storefront.ErrNotAuthenticated
	}

	var out refreshResponse
	status, info, err := c.client.doJSON(ctx, http.MethodPost, "/api/v1/auth/refresh", "", refreshRequest{RefreshToken: token}, &out)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if status == http.StatusUnauthorized {
		// Refresh token revoked or expired. The session is over.
		c.mu.Lock()
		c.refreshToken = ""
		c.mu.Unlock()
		return "", storefront.ErrNotAuthenticated
	}
	if status < 200 || status >= 300 {
		if info != nil {
			return "", fmt.Errorf("refresh token failed: %s: %s", info.Code, info.Message)
		}
		return "", fmt.Errorf("refresh token failed: status %d", status)
	}

	if out.Token.RefreshToken != "" {
		c.mu.Lock()
		c.refreshToken = out.Token.RefreshToken
		c.mu.Unlock()
	}
	return out.Token.AccessToken, nil
}
