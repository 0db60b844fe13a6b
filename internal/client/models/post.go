package models

import "time"

// PostType tells how a post's media should be presented.
type PostType string

const (
	PostText  PostType = "text"
	PostImage PostType = "image"
	PostVideo PostType = "video"
)

// Post is an entry of the social feed.
type Post struct {
	ID            ID        `json:"id"`
	AuthorID      ID        `json:"author_id"`
	Author        *User     `json:"author,omitempty"`
	Content       string    `json:"content"`
	Type          PostType  `json:"post_type"`
	MediaURLs     []string  `json:"media_urls,omitempty"`
	Location      string    `json:"location,omitempty"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	IsLiked       bool      `json:"is_liked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// NewPost is the body of POST posts.
type NewPost struct {
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls"`
	Location  string   `json:"location,omitempty"`
	Type      PostType `json:"post_type"`
}

// Page selects a window of a listing.
type Page struct {
	Limit  int `url:"limit,omitempty"`
	Offset int `url:"offset,omitempty"`
}

// DefaultPageLimit and MaxPageLimit bound listing requests.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

// Normalize clamps the page to the API's accepted range.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
