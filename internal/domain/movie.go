package domain

import (
	"time"

	"github.com/google/uuid"
)

// Movie represents the canonical movie entity in the database/service.
type Movie struct {
	ID          uuid.UUID
	Title       string
	Genre       string
	Actors      []string
	ReleaseDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MovieWithReviews is a movie joined with every review pointing at it.
// AvgRating is nil when the movie has no reviews.
type MovieWithReviews struct {
	Movie
	Reviews   []Review
	AvgRating *float64
}
