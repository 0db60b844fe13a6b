package models

import "time"

// Category classifies an itinerary.
type Category string

const (
	CategoryAdventure   Category = "adventure"
	CategoryCultural    Category = "cultural"
	CategoryGastronomic Category = "gastronomic"
	CategoryNature      Category = "nature"
	CategoryUrban       Category = "urban"
	CategoryBeach       Category = "beach"
	CategoryMountain    Category = "mountain"
	CategoryBusiness    Category = "business"
	CategoryFamily      Category = "family"
	CategoryRomantic    Category = "romantic"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryAdventure, CategoryCultural, CategoryGastronomic, CategoryNature, CategoryUrban,
	CategoryBeach, CategoryMountain, CategoryBusiness, CategoryFamily, CategoryRomantic,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Itinerary is a published travel plan.
type Itinerary struct {
	ID            ID        `json:"id"`
	AuthorID      ID        `json:"author_id"`
	Author        *User     `json:"author,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Duration      int       `json:"duration"`
	Difficulty    int       `json:"difficulty,omitempty"`
	EstimatedCost float64   `json:"estimated_cost,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	CoverImage    string    `json:"cover_image,omitempty"`
	IsFeatured    bool      `json:"is_featured"`
	AverageRating float64   `json:"average_rating"`
	RatingsCount  int64     `json:"ratings_count"`
	UserRating    int       `json:"user_rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewItinerary is the body of POST itineraries.
type NewItinerary struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	Category      Category `json:"category" validate:"required,category"`
	City          string   `json:"city" validate:"required,max=200"`
	Country       string   `json:"country" validate:"required,max=200"`
	Duration      int      `json:"duration" validate:"min=1"`
	Difficulty    int      `json:"difficulty,omitempty" validate:"omitempty,min=1,max=5"`
	EstimatedCost float64  `json:"estimated_cost,omitempty" validate:"gte=0"`
	Currency      string   `json:"currency,omitempty" validate:"omitempty,len=3"`
	CoverImage    string   `json:"cover_image,omitempty"`
}

// ItineraryFilter narrows GET itineraries.
type ItineraryFilter struct {
	Category Category `url:"category,omitempty"`
	City     string   `url:"city,omitempty"`
	Country  string   `url:"country,omitempty"`
	OrderBy  string   `url:"order_by,omitempty"`
	Featured bool     `url:"featured,omitempty"`
	Page
}

// RatingRequest is the body of POST/PUT itineraries/{id}/rate.
type RatingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)
