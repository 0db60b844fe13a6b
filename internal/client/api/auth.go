package api

import (
	"context"
	"net/http"

	"github.com/guia-app/guia/internal/client/models"
)

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{method: http.MethodPost, path: []string{"auth", "register"}, body: req, out: &out, credentialCheck: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{method: http.MethodPost, path: []string{"auth", "login"}, body: req, out: &out, credentialCheck: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, path: []string{"auth", "logout"}})
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   []string{"auth", "refresh"},
		body:   models.RefreshRequest{RefreshToken: refreshToken},
		out:    &out,
		// a rejected refresh is reported to the caller, which purges itself
		credentialCheck: true,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks the current token and returns the user it belongs to.
func (c *Client) Validate(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"auth", "validate"}, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
