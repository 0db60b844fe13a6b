package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/media"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/client/optimistic"
	"github.com/guia-app/guia/internal/client/validate"
	"github.com/guia-app/guia/internal/logging"
)

// PostInput is a post being composed.
type PostInput struct {
	Content  string
	Location string
	Files    []media.File
}

type PostService interface {
	// Feed loads a page of the feed. The first page replaces the local
	// feed, later pages extend it.
	Feed(ctx context.Context, page models.Page) ([]models.Post, error)
	// Posts returns the local feed with the latest like state.
	Posts() []models.Post
	Get(ctx context.Context, id models.ID) (*models.Post, error)
	Create(ctx context.Context, in PostInput) (*models.Post, error)
	// Delete removes the post from the local feed at once and puts it back
	// if the server refuses.
	Delete(ctx context.Context, id models.ID) error
	ToggleLike(ctx context.Context, id models.ID) (optimistic.Engagement, error)
	Likes(id models.ID) (optimistic.Engagement, bool)
	Search(ctx context.Context, q string, page models.Page) ([]models.Post, error)
	Trending(ctx context.Context, page models.Page) ([]models.Post, error)
	ByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Post, error)
	// Reset drops the local feed and like state of the previous user.
	Reset()
	Close()
}

type postService struct {
	api    api.Posts
	media  MediaService
	notify Notifier
	logger logging.Logger
	likes  *optimistic.Controller[optimistic.Engagement]

	mu   sync.Mutex
	feed []models.Post
}

func NewPostService(posts api.Posts, mediaSvc MediaService, notify Notifier, logger logging.Logger) PostService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postService{
		api:    posts,
		media:  mediaSvc,
		notify: notifierOrNop(notify),
		logger: logger,
		likes:  optimistic.NewController(optimistic.NewCache[optimistic.Engagement](), logger),
	}
}

func (s *postService) Feed(ctx context.Context, page models.Page) ([]models.Post, error) {
	page = page.Normalize()
	posts, err := s.api.Feed(ctx, page)
	if err != nil {
		s.notify.Error(api.Message(err, "Could not load feed"), "")
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	s.seed(posts)

	s.mu.Lock()
	if page.Offset == 0 {
		s.feed = slices.Clone(posts)
	} else {
		s.feed = append(s.feed, posts...)
	}
	s.mu.Unlock()

	return s.overlay(posts), nil
}

func (s *postService) Posts() []models.Post {
	s.mu.Lock()
	feed := slices.Clone(s.feed)
	s.mu.Unlock()
	return s.overlay(feed)
}

func (s *postService) Get(ctx context.Context, id models.ID) (*models.Post, error) {
	p, err := s.api.Post(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	s.seed([]models.Post{*p})
	out := s.overlay([]models.Post{*p})[0]
	return &out, nil
}

func (s *postService) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	if fields := validate.Post(in.Content, len(in.Files)); len(fields) > 0 {
		s.notify.Error(fields["content"], "")
		return nil, fields
	}

	var urls []string
	postType := models.PostText
	if len(in.Files) > 0 {
		if s.media == nil {
			return nil, errors.New("media uploads are not configured")
		}
		uploads, err := s.media.Upload(ctx, in.Files)
		if err != nil {
			return nil, err
		}
		postType = models.PostImage
		for i, up := range uploads {
			urls = append(urls, up.URL)
			if in.Files[i].Kind() == models.MediaVideo {
				postType = models.PostVideo
			}
		}
	}

	p, err := s.api.CreatePost(ctx, models.NewPost{
		Content:   strings.TrimSpace(in.Content),
		MediaURLs: urls,
		Location:  strings.TrimSpace(in.Location),
		Type:      postType,
	})
	if err != nil {
		s.notify.Error(api.Message(err, "Could not create post"), "")
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.seed([]models.Post{*p})
	s.mu.Lock()
	s.feed = append([]models.Post{*p}, s.feed...)
	s.mu.Unlock()
	s.notify.Success("Post created", "")
	return p, nil
}

func (s *postService) Delete(ctx context.Context, id models.ID) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.feed, func(p models.Post) bool { return p.ID == id })
	var removed models.Post
	if idx >= 0 {
		removed = s.feed[idx]
		s.feed = slices.Delete(s.feed, idx, idx+1)
	}
	s.mu.Unlock()

	if err := s.api.DeletePost(ctx, id); err != nil {
		if idx >= 0 {
			s.mu.Lock()
			if !slices.ContainsFunc(s.feed, func(p models.Post) bool { return p.ID == id }) {
				s.feed = slices.Insert(s.feed, min(idx, len(s.feed)), removed)
			}
			s.mu.Unlock()
		}
		s.notify.Error(api.Message(err, "Could not delete post"), "")
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}

	s.likes.Cache().Delete(id)
	s.notify.Success("Post deleted", "")
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, id models.ID) (optimistic.Engagement, error) {
	if _, ok := s.likes.Cache().Get(id); !ok {
		if _, err := s.Get(ctx, id); err != nil {
			s.notify.Error(api.Message(err, "Could not like post"), "")
			return optimistic.Engagement{}, err
		}
	}
	e, err := optimistic.Toggle(ctx, s.likes, id,
		func(ctx context.Context) error { return s.api.LikePost(ctx, id) },
		func(ctx context.Context) error { return s.api.UnlikePost(ctx, id) },
	)
	switch {
	case errors.Is(err, optimistic.ErrInFlight):
		return e, err
	case err != nil:
		s.notify.Error("Could not like post", "")
		return e, fmt.Errorf("failed to toggle like on post %s: %w", id, err)
	}
	return e, nil
}

func (s *postService) Likes(id models.ID) (optimistic.Engagement, bool) {
	return s.likes.Cache().Get(id)
}

func (s *postService) Search(ctx context.Context, q string, page models.Page) ([]models.Post, error) {
	posts, err := s.api.SearchPosts(ctx, strings.TrimSpace(q), page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	s.seed(posts)
	return s.overlay(posts), nil
}

func (s *postService) Trending(ctx context.Context, page models.Page) ([]models.Post, error) {
	posts, err := s.api.TrendingPosts(ctx, page.Normalize())
	if err != nil {
		s.notify.Error(api.Message(err, "Could not load trending posts"), "")
		return nil, fmt.Errorf("failed to load trending posts: %w", err)
	}
	s.seed(posts)
	return s.overlay(posts), nil
}

func (s *postService) ByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Post, error) {
	posts, err := s.api.PostsByAuthor(ctx, authorID, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to load posts of %s: %w", authorID, err)
	}
	s.seed(posts)
	return s.overlay(posts), nil
}

func (s *postService) Reset() {
	s.likes.Reset()
	s.mu.Lock()
	s.feed = nil
	s.mu.Unlock()
}

func (s *postService) Close() {
	s.likes.Close()
}

// seed records server like state, except for posts with a like in flight.
func (s *postService) seed(posts []models.Post) {
	for _, p := range posts {
		s.likes.Seed(p.ID, optimistic.Engagement{Active: p.IsLiked, Count: p.LikesCount})
	}
}

func (s *postService) overlay(posts []models.Post) []models.Post {
	for i := range posts {
		if e, ok := s.likes.Cache().Get(posts[i].ID); ok {
			posts[i].IsLiked = e.Active
			posts[i].LikesCount = e.Count
		}
	}
	return posts
}
