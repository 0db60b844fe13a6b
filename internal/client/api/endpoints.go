package api

import (
	"context"
	"io"

	"github.com/guia-app/guia/internal/client/models"
)

// Auth covers session endpoints.
type Auth interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Validate(ctx context.Context) (*models.User, error)
}

// Users covers profiles and the follow graph.
type Users interface {
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	User(ctx context.Context, id models.ID) (*models.User, error)
	SearchUsers(ctx context.Context, q string, page models.Page) ([]models.User, error)
	Follow(ctx context.Context, id models.ID) error
	Unfollow(ctx context.Context, id models.ID) error
	Followers(ctx context.Context, id models.ID, page models.Page) ([]models.User, error)
	Following(ctx context.Context, id models.ID, page models.Page) ([]models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) error
	Deactivate(ctx context.Context) error
}

// Posts covers the social feed.
type Posts interface {
	Feed(ctx context.Context, page models.Page) ([]models.Post, error)
	CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error)
	Post(ctx context.Context, id models.ID) (*models.Post, error)
	UpdatePost(ctx context.Context, id models.ID, post models.NewPost) (*models.Post, error)
	DeletePost(ctx context.Context, id models.ID) error
	LikePost(ctx context.Context, id models.ID) error
	UnlikePost(ctx context.Context, id models.ID) error
	PostsByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Post, error)
	SearchPosts(ctx context.Context, q string, page models.Page) ([]models.Post, error)
	TrendingPosts(ctx context.Context, page models.Page) ([]models.Post, error)
}

// Itineraries covers itinerary browsing, authoring and ratings.
type Itineraries interface {
	Itineraries(ctx context.Context, filter models.ItineraryFilter) ([]models.Itinerary, error)
	CreateItinerary(ctx context.Context, it models.NewItinerary) (*models.Itinerary, error)
	Itinerary(ctx context.Context, id models.ID) (*models.Itinerary, error)
	UpdateItinerary(ctx context.Context, id models.ID, it models.NewItinerary) (*models.Itinerary, error)
	DeleteItinerary(ctx context.Context, id models.ID) error
	RateItinerary(ctx context.Context, id models.ID, r models.RatingRequest) error
	UpdateRating(ctx context.Context, id models.ID, r models.RatingRequest) error
	DeleteRating(ctx context.Context, id models.ID) error
	SearchItineraries(ctx context.Context, q string, page models.Page) ([]models.Itinerary, error)
	ItinerariesByAuthor(ctx context.Context, authorID models.ID, page models.Page) ([]models.Itinerary, error)
	SimilarItineraries(ctx context.Context, id models.ID, limit int) ([]models.Itinerary, error)
}

// File is one upload part.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Media covers uploads.
type Media interface {
	UploadImage(ctx context.Context, f File) (*models.Upload, error)
	UploadVideo(ctx context.Context, f File) (*models.Upload, error)
	UploadMultiple(ctx context.Context, files []File, kind models.MediaKind) ([]models.Upload, error)
	DeleteMedia(ctx context.Context, filePath string) error
	MediaInfo(ctx context.Context, filePath string) (*models.MediaInfo, error)
}

var (
	_ Auth        = (*Client)(nil)
	_ Users       = (*Client)(nil)
	_ Posts       = (*Client)(nil)
	_ Itineraries = (*Client)(nil)
	_ Media       = (*Client)(nil)
)

type searchQuery struct {
	Q string `url:"q"`
	models.Page
}

type authorQuery struct {
	AuthorID models.ID `url:"authorId"`
	models.Page
}

type limitQuery struct {
	Limit int `url:"limit,omitempty"`
}

type filePathQuery struct {
	FilePath string `url:"file_path"`
}
