package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/optimistic"
	"github.com/guia-app/guia/internal/client/validate"
	"github.com/guia-app/guia/internal/logging"
)

// DefaultSimilarLimit is how many similar itineraries are fetched.
const DefaultSimilarLimit = 5

type ItineraryService interface {
	List(ctx context.Context, filter models.ItineraryFilter) ([]models.Itinerary, error)
	Get(ctx context.Context, id models.ID) (*models.Itinerary, error)
	Create(ctx context.Context, it models.NewItinerary) (*models.Itinerary, error)
	Delete(ctx context.Context, id models.ID) error
	// Rate records the user's stars. A first rating creates it, later
	// ones replace it.
	Rate(ctx context.Context, id models.ID, stars int) (optimistic.Rating, error)
	Unrate(ctx context.Context, id models.ID) (optimistic.Rating, error)
	Rating(id models.ID) (optimistic.Rating, bool)
	Search(ctx context.Context, q string, page models.Page) ([]models.Itinerary, error)
	Similar(ctx context.Context, id models.ID) ([]models.Itinerary, error)
	ByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Itinerary, error)
	// Reset drops the rating state of the previous user.
	Reset()
	Close()
}

type itineraryService struct {
	api     api.Itineraries
	notify  Notifier
	logger  logging.Logger
	ratings *optimistic.Controller[optimistic.Rating]
}

func NewItineraryService(its api.Itineraries, notify Notifier, logger logging.Logger) ItineraryService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &itineraryService{
		api:     its,
		notify:  notifierOrNop(notify),
		logger:  logger,
		ratings: optimistic.NewController(optimistic.NewCache[optimistic.Rating](), logger),
	}
}

func (s *itineraryService) List(ctx context.Context, filter models.ItineraryFilter) ([]models.Itinerary, error) {
	filter.Page = filter.Page.Normalize()
	its, err := s.api.Itineraries(ctx, filter)
	if err != nil {
		s.notify.Error(api.Message(err, "Could not load itineraries"), "")
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	return s.seed(its), nil
}

func (s *itineraryService) Get(ctx context.Context, id models.ID) (*models.Itinerary, error) {
	it, err := s.api.Itinerary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary %s: %w", id, err)
	}
	out := s.seed([]models.Itinerary{*it})[0]
	return &out, nil
}

func (s *itineraryService) Create(ctx context.Context, in models.NewItinerary) (*models.Itinerary, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if fields := validate.Itinerary(in); len(fields) > 0 {
		s.notify.Error(fields.Error(), "")
		return nil, fields
	}

	it, err := s.api.CreateItinerary(ctx, in)
	if err != nil {
		s.notify.Error(api.Message(err, "Could not create itinerary"), "")
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	s.notify.Success("Itinerary created", "")
	return it, nil
}

func (s *itineraryService) Delete(ctx context.Context, id models.ID) error {
	if err := s.api.DeleteItinerary(ctx, id); err != nil {
		s.notify.Error(api.Message(err, "Could not delete itinerary"), "")
		return fmt.Errorf("failed to delete itinerary %s: %w", id, err)
	}
	s.ratings.Cache().Delete(id)
	s.notify.Success("Itinerary deleted", "")
	return nil
}

func (s *itineraryService) Rate(ctx context.Context, id models.ID, stars int) (optimistic.Rating, error) {
	if fields := validate.Rating(stars); len(fields) > 0 {
		s.notify.Error(fields.Error(), "")
		return optimistic.Rating{}, fields
	}
	if err := s.load(ctx, id); err != nil {
		return optimistic.Rating{}, s.resolve(err, id, "", "Could not rate itinerary")
	}
	r, err := optimistic.Rate(ctx, s.ratings, id, stars,
		func(ctx context.Context, stars int) error {
			return s.api.RateItinerary(ctx, id, models.RatingRequest{Rating: stars})
		},
		func(ctx context.Context, stars int) error {
			return s.api.UpdateRating(ctx, id, models.RatingRequest{Rating: stars})
		},
	)
	return r, s.resolve(err, id, "Rating saved", "Could not rate itinerary")
}

func (s *itineraryService) Unrate(ctx context.Context, id models.ID) (optimistic.Rating, error) {
	if err := s.load(ctx, id); err != nil {
		return optimistic.Rating{}, s.resolve(err, id, "", "Could not remove rating")
	}
	r, err := optimistic.Unrate(ctx, s.ratings, id, func(ctx context.Context) error {
		return s.api.DeleteRating(ctx, id)
	})
	return r, s.resolve(err, id, "Rating removed", "Could not remove rating")
}

func (s *itineraryService) resolve(err error, id models.ID, okMsg, failMsg string) error {
	switch {
	case err == nil:
		s.notify.Success(okMsg, "")
		return nil
	case errors.Is(err, optimistic.ErrInFlight):
		return err
	case errors.Is(err, optimistic.ErrNotRated):
		s.notify.Error(err.Error(), "")
		return err
	}
	s.notify.Error(api.Message(err, failMsg), "")
	return fmt.Errorf("failed to update rating of itinerary %s: %w", id, err)
}

// load fetches id when its rating state is not cached yet.
func (s *itineraryService) load(ctx context.Context, id models.ID) error {
	if _, ok := s.ratings.Cache().Get(id); ok {
		return nil
	}
	_, err := s.Get(ctx, id)
	return err
}

func (s *itineraryService) Rating(id models.ID) (optimistic.Rating, bool) {
	return s.ratings.Cache().Get(id)
}

func (s *itineraryService) Search(ctx context.Context, q string, page models.Page) ([]models.Itinerary, error) {
	its, err := s.api.SearchItineraries(ctx, strings.TrimSpace(q), page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to search itineraries: %w", err)
	}
	return s.seed(its), nil
}

func (s *itineraryService) Similar(ctx context.Context, id models.ID) ([]models.Itinerary, error) {
	its, err := s.api.SimilarItineraries(ctx, id, DefaultSimilarLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load itineraries similar to %s: %w", id, err)
	}
	return s.seed(its), nil
}

func (s *itineraryService) ByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Itinerary, error) {
	its, err := s.api.ItinerariesByAuthor(ctx, authorID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to load itineraries of %s: %w", authorID, err)
	}
	return s.seed(its), nil
}

func (s *itineraryService) Reset() {
	s.ratings.Reset()
}

func (s *itineraryService) Close() {
	s.ratings.Close()
}

// seed records server rating state and returns its with the cached state
// applied, so an in-flight rating shows through.
func (s *itineraryService) seed(its []models.Itinerary) []models.Itinerary {
	for i := range its {
		it := &its[i]
		s.ratings.Seed(it.ID, optimistic.Rating{Mine: it.UserRating, Count: it.RatingsCount, Average: it.AverageRating})
		if r, ok := s.ratings.Cache().Get(it.ID); ok {
			it.UserRating, it.RatingsCount, it.AverageRating = r.Mine, r.Count, r.Average
		}
	}
	return its
}
