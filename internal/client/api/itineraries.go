package api

import (
	"context"
	"net/http"

	"github.com/guia-app/guia/internal/client/models"
)

func (c *Client) Itineraries(ctx context.Context, filter models.ItineraryFilter) ([]models.Itinerary, error) {
	var out []models.Itinerary
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"itineraries"}, query: filter, out: &out})
	return out, err
}

func (c *Client) CreateItinerary(ctx context.Context, it models.NewItinerary) (*models.Itinerary, error) {
	var out models.Itinerary
	if err := c.do(ctx, call{method: http.MethodPost, path: []string{"itineraries"}, body: it, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Itinerary(ctx context.Context, id models.ID) (*models.Itinerary, error) {
	var out models.Itinerary
	if err := c.do(ctx, call{method: http.MethodGet, path: []string{"itineraries", id.String()}, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateItinerary(ctx context.Context, id models.ID, it models.NewItinerary) (*models.Itinerary, error) {
	var out models.Itinerary
	if err := c.do(ctx, call{method: http.MethodPut, path: []string{"itineraries", id.String()}, body: it, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteItinerary(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"itineraries", id.String()}})
}

func (c *Client) RateItinerary(ctx context.Context, id models.ID, r models.RatingRequest) error {
	return c.do(ctx, call{method: http.MethodPost, path: []string{"itineraries", id.String(), "rate"}, body: r})
}

func (c *Client) UpdateRating(ctx context.Context, id models.ID, r models.RatingRequest) error {
	return c.do(ctx, call{method: http.MethodPut, path: []string{"itineraries", id.String(), "rate"}, body: r})
}

func (c *Client) DeleteRating(ctx context.Context, id models.ID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"itineraries", id.String(), "rate"}})
}

func (c *Client) SearchItineraries(ctx context.Context, q string, page models.Page) ([]models.Itinerary, error) {
	var out []models.Itinerary
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"itineraries", "search"}, query: searchQuery{Q: q, Page: page.Normalize()}, out: &out})
	return out, err
}

func (c *Client) ItinerariesByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Itinerary, error) {
	var out []models.Itinerary
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"itineraries", "author"}, query: authorQuery{AuthorID: authorID, Page: page.Normalize()}, out: &out})
	return out, err
}

func (c *Client) SimilarItineraries(ctx context.Context, id models.ID, limit int) ([]models.Itinerary, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []models.Itinerary
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"itineraries", id.String(), "similar"}, query: limitQuery{Limit: limit}, out: &out})
	return out, err
}
