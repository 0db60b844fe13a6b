package api

import (
	"context"
	"net/http"

	"github.com/guia-app/guia/internal/client/models"
)

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"users", "profile"}, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodPut, path: []string{"users", "profile"}, body: update, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) User(ctx context.Context, id models.ID) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"users", id.String()}, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchUsers(ctx context.Context, q string, page models.Page) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"users", "search"}, query: searchQuery{Q: q, Page: page.Normalize()}, out: &out})
	return out, err
}

func (c *Client) Follow(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodPost, path: []string{"users", id.String(), "follow"}})
}

func (c *Client) Unfollow(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"users", id.String(), "unfollow"}})
}

func (c *Client) Followers(ctx context.Context, id models.ID, page models.Page) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"users", id.String(), "followers"}, query: page.Normalize(), out: &out})
	return out, err
}

func (c *Client) Following(ctx context.Context, id models.ID, page models.Page) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"users", id.String(), "following"}, query: page.Normalize(), out: &out})
	return out, err
}

func (c *Client) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return c.do(ctx, call{method: http.MethodPut, path: []string{"users", "change-password"}, body: change})
}

func (c *Client) Deactivate(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"users", "deactivate"}})
}
