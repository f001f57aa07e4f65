package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-reviews/internal/apperr"
	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// ReviewsRepository provides helpers for movie reviews.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

// ReviewCreateParams captures the payload required to create a review.
// MovieID arrives as client text and is parsed here.
type ReviewCreateParams struct {
	MovieID  string
	Username string
	Review   string
	Rating   float64
}

// Create stores a review. The movie is not required to exist.
func (r *ReviewsRepository) Create(ctx context.Context, params ReviewCreateParams) (domain.Review, error) {
	movieID, err := uuid.Parse(strings.TrimSpace(params.MovieID))
	if err != nil {
		return domain.Review{}, apperr.Wrap(apperr.KindValidation, err, "Invalid movieId")
	}

	const query = `
        INSERT INTO reviews (id, movie_id, username, review, rating)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, movie_id, username, review, rating, created_at
    `

	var review domain.Review
	err = r.pool.QueryRow(ctx, query, uuid.New(), movieID, params.Username, params.Review, params.Rating).Scan(
		&review.ID,
		&review.MovieID,
		&review.Username,
		&review.Text,
		&review.Rating,
		&review.CreatedAt,
	)
	if err != nil {
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

// List returns every review with the title of the movie it references.
func (r *ReviewsRepository) List(ctx context.Context) ([]domain.ReviewWithMovie, error) {
	const query = `
        SELECT r.id, r.movie_id, r.username, r.review, r.rating, r.created_at, m.title
        FROM reviews r
        LEFT JOIN movies m ON m.id = r.movie_id
        ORDER BY r.created_at, r.id
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ReviewWithMovie, 0)
	for rows.Next() {
		var item domain.ReviewWithMovie
		if err := rows.Scan(
			&item.ID,
			&item.MovieID,
			&item.Username,
			&item.Text,
			&item.Rating,
			&item.CreatedAt,
			&item.MovieTitle,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a review by identifier.
func (r *ReviewsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
