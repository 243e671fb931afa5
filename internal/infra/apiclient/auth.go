package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/runoshun/tasker/internal/domain"
)

// Ensure AuthClient implements domain.AuthAPI.
var _ domain.AuthAPI = (*AuthClient)(nil)

// AuthClient binds the /auth endpoints.
type AuthClient struct {
	client *Client
}

// NewAuthClient creates an AuthClient on top of c.
func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{client: c}
}

// loginResponse accepts both token field names seen from the server.
type loginResponse struct {
	User        domain.Identity `json:"user"`
	AccessToken string          `json:"access_token"`
	Token       string          `json:"token"`
}

// Register creates an account.
func (a *AuthClient) Register(ctx context.Context, in domain.RegisterInput) error {
	return a.client.Do(ctx, http.MethodPost, "/auth/register", in, nil)
}

// Login exchanges credentials for a token and identity.
func (a *AuthClient) Login(ctx context.Context, in domain.LoginInput) (*domain.LoginResult, error) {
	var resp loginResponse
	if err := a.client.Do(ctx, http.MethodPost, "/auth/login", in, &resp); err != nil {
		return nil, err
	}
	token := resp.AccessToken
	if token == "" {
		token = resp.Token
	}
	if token == "" {
		return nil, errors.New("login response has no token")
	}
	return &domain.LoginResult{
		Token:    token,
		Identity: resp.User,
	}, nil
}
