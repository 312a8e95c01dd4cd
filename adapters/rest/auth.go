package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/pretorsport/storefront/core"
)

// Ensure Client implements the auth port.
var _ core.AuthAPI = (*Client)(nil)

// authResponse is the shared shape of the login, register and refresh
// endpoints: {accessToken, refreshToken, expiresIn, user}.
type authResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	TokenType    string     `json:"tokenType"`
	ExpiresIn    int64      `json:"expiresIn"` // seconds
	IssuedAt     time.Time  `json:"issuedAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	User         *core.User `json:"user"`
}

func (r *authResponse) toResult() *core.AuthResult {
	issued := r.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	expires := r.ExpiresAt
	if expires.IsZero() && r.ExpiresIn > 0 {
		expires = issued.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return &core.AuthResult{
		User: r.User,
		Tokens: core.TokenPair{
			AccessToken:  r.AccessToken,
			RefreshToken: r.RefreshToken,
			IssuedAt:     issued,
			ExpiresAt:    expires,
		},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*core.AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return resp.toResult(), nil
}

func (c *Client) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", input, &resp); err != nil {
		return nil, err
	}
	return resp.toResult(), nil
}

// Refresh exchanges the refresh token for a new pair. The endpoint is
// allow-listed, so this request never re-enters the refresh flow itself.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*core.AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return resp.toResult(), nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", struct{}{}, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (*core.User, error) {
	var u core.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
