package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a single piece of feedback on a movie. MovieID is not enforced
// against the movies table.
type Review struct {
	ID        uuid.UUID
	MovieID   uuid.UUID
	Username  string
	Text      string
	Rating    float64
	CreatedAt time.Time
}

// ReviewWithMovie carries the referenced movie's title, nil for orphans.
type ReviewWithMovie struct {
	Review
	MovieTitle *string
}
