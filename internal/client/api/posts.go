package api

import (
	"context"
	"net/http"

	"github.com/guia-app/guia/internal/client/models"
)

func (c *Client) Feed(ctx context.Context, page models.Page) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"posts"}, query: page.Normalize(), out: &out})
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, call{method: http.MethodPost, path: []string{"posts"}, body: post, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Post(ctx context.Context, id models.ID) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"posts", id.String()}, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, id models.ID, post models.NewPost) (*models.Post, error) {
	var out models.Post
	if err := c.do(ctx, call{method: http.MethodPut, path: []string{"posts", id.String()}, body: post, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"posts", id.String()}})
}

func (c *Client) LikePost(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodPost, path: []string{"posts", id.String(), "like"}})
}

func (c *Client) UnlikePost(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"posts", id.String(), "like"}})
}

func (c *Client) PostsByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"posts", "author"}, query: authorQuery{AuthorID: authorID, Page: page.Normalize()}, out: &out})
	return out, err
}

func (c *Client) SearchPosts(ctx context.Context, q string, page models.Page) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"posts", "search"}, query: searchQuery{Q: q, Page: page.Normalize()}, out: &out})
	return out, err
}

func (c *Client) TrendingPosts(ctx context.Context, page models.Page) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"posts", "trending"}, query: page.Normalize(), out: &out})
	return out, err
}
