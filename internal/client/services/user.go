package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/optimistic"
	"github.com/guia-app/guia/internal/logging"
)

// ErrSelfFollow is returned when the user tries to follow themselves.
var ErrSelfFollow = errors.New("you cannot follow yourself")

type UserService interface {
	Get(ctx context.Context, id models.ID) (*models.User, error)
	Search(ctx context.Context, q string, page models.Page) ([]models.User, error)
	// ToggleFollow follows or unfollows id and moves its followers count.
	ToggleFollow(ctx context.Context, id models.ID) (optimistic.Engagement, error)
	Follow(id models.ID) (optimistic.Engagement, bool)
	Followers(ctx context.Context, id models.ID, page models.Page) ([]models.User, error)
	Following(ctx context.Context, id models.ID, page models.Page) ([]models.User, error)
	Deactivate(ctx context.Context) error
	// Reset drops the follow state of the previous user.
	Reset()
	Close()
}

type userService struct {
	api     api.Users
	notify  Notifier
	logger  logging.Logger
	isOwn   func(models.ID) bool
	follows *optimistic.Controller[optimistic.Engagement]
}

// NewUserService builds the service. isOwn reports whether an id is the
// signed-in user; it may be nil.
func NewUserService(users api.Users, notify Notifier, logger logging.Logger, isOwn func(models.ID) bool) UserService {
	if logger == nil {
		logger = logging.Discard()
	}
	if isOwn == nil {
		isOwn = func(models.ID) bool { return false }
	}
	return &userService{
		api:     users,
		notify:  notifierOrNop(notify),
		logger:  logger,
		isOwn:   isOwn,
		follows: optimistic.NewController(optimistic.NewCache[optimistic.Engagement](), logger),
	}
}

func (s *userService) Get(ctx context.Context, id models.ID) (*models.User, error) {
	u, err := s.api.User(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &s.seed([]models.User{*u})[0], nil
}

func (s *userService) Search(ctx context.Context, q string, page models.Page) ([]models.User, error) {
	users, err := s.api.SearchUsers(ctx, strings.TrimSpace(q), page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return s.seed(users), nil
}

func (s *userService) ToggleFollow(ctx context.Context, id models.ID) (optimistic.Engagement, error) {
	if s.isOwn(id) {
		s.notify.Error(ErrSelfFollow.Error(), "")
		return optimistic.Engagement{}, ErrSelfFollow
	}
	if _, ok := s.follows.Cache().Get(id); !ok {
		if _, err := s.Get(ctx, id); err != nil {
			s.notify.Error(api.Message(err, "Could not update follow"), "")
			return optimistic.Engagement{}, err
		}
	}
	e, err := optimistic.Toggle(ctx, s.follows, id,
		func(ctx context.Context) error { return s.api.Follow(ctx, id) },
		func(ctx context.Context) error { return s.api.Unfollow(ctx, id) },
	)
	switch {
	case errors.Is(err, optimistic.ErrInFlight):
		return e, err
	case err != nil:
		s.notify.Error(api.Message(err, "Could not update follow"), "")
		return e, fmt.Errorf("failed to toggle follow on %s: %w", id, err)
	}
	if e.Active {
		s.notify.Success("Following", "")
	} else {
		s.notify.Success("Unfollowed", "")
	}
	return e, nil
}

func (s *userService) Follow(id models.ID) (optimistic.Engagement, bool) {
	return s.follows.Cache().Get(id)
}

func (s *userService) Followers(ctx context.Context, id models.ID, page models.Page) ([]models.User, error) {
	users, err := s.api.Followers(ctx, id, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to load followers of %s: %w", id, err)
	}
	return s.seed(users), nil
}

func (s *userService) Following(ctx context.Context, id models.ID, page models.Page) ([]models.User, error) {
	users, err := s.api.Following(ctx, id, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to load followed users of %s: %w", id, err)
	}
	return s.seed(users), nil
}

func (s *userService) Deactivate(ctx context.Context) error {
	if err := s.api.Deactivate(ctx); err != nil {
		s.notify.Error(api.Message(err, "Could not deactivate account"), "")
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	s.notify.Success("Account deactivated", "")
	return nil
}

func (s *userService) Reset() {
	s.follows.Reset()
}

func (s *userService) Close() {
	s.follows.Close()
}

func (s *userService) seed(users []models.User) []models.User {
	for i := range users {
		u := &users[i]
		s.follows.Seed(u.ID, optimistic.Engagement{Active: u.IsFollowing, Count: u.FollowersCount})
		if e, ok := s.follows.Cache().Get(u.ID); ok {
			u.IsFollowing, u.FollowersCount = e.Active, e.Count
		}
	}
	return users
}
