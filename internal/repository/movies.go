package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    genre,
    actors,
    release_date,
    created_at,
    updated_at
`

// Joins every movie with its reviews. Reviews are folded into a JSON array so
// a single row carries the movie, its reviews and their mean rating.
const movieWithReviewsQuery = `
    SELECT m.id,
           m.title,
           m.genre,
           m.actors,
           m.release_date,
           m.created_at,
           m.updated_at,
           COALESCE(
               json_agg(json_build_object(
                   'id', r.id,
                   'movieId', r.movie_id,
                   'username', r.username,
                   'review', r.review,
                   'rating', r.rating,
                   'createdAt', r.created_at
               ) ORDER BY r.created_at, r.id) FILTER (WHERE r.id IS NOT NULL),
               '[]'::json
           ) AS reviews,
           AVG(r.rating) AS avg_rating
    FROM movies m
    LEFT JOIN reviews r ON r.movie_id = m.id
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	Title       string
	Genre       string
	Actors      []string
	ReleaseDate *time.Time
}

// MovieUpdateParams lists the fields to change. Nil fields are left untouched.
// ClearReleaseDate sets release_date to NULL and wins over ReleaseDate.
type MovieUpdateParams struct {
	Title            *string
	Genre            *string
	Actors           []string
	ReleaseDate      *time.Time
	ClearReleaseDate bool
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (id, title, genre, actors, release_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, movieColumns)

	row := r.pool.QueryRow(ctx, query, uuid.New(), params.Title, params.Genre, params.Actors, params.ReleaseDate)
	return scanMovie(row)
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns every movie in insertion order.
func (r *MoviesRepository) List(ctx context.Context) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY created_at, id`, movieColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a partial update and returns the updated movie.
func (r *MoviesRepository) Update(ctx context.Context, id uuid.UUID, params MovieUpdateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        UPDATE movies
        SET title = COALESCE($2, title),
            genre = COALESCE($3, genre),
            actors = COALESCE($4, actors),
            release_date = CASE WHEN $6::boolean THEN NULL ELSE COALESCE($5, release_date) END,
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, movieColumns)

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id, params.Title, params.Genre, params.Actors, params.ReleaseDate, params.ClearReleaseDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Delete removes a movie. Its reviews are left in place.
func (r *MoviesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWithReviews fetches one movie joined with its reviews and average rating.
func (r *MoviesRepository) GetWithReviews(ctx context.Context, id uuid.UUID) (domain.MovieWithReviews, error) {
	query := movieWithReviewsQuery + ` WHERE m.id = $1 GROUP BY m.id`
	movie, err := scanMovieWithReviews(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MovieWithReviews{}, ErrNotFound
		}
		return domain.MovieWithReviews{}, err
	}
	return movie, nil
}

// ListWithReviews returns every movie with its reviews, best rated first.
// Movies without reviews come last; ties and unrated movies are ordered by title.
func (r *MoviesRepository) ListWithReviews(ctx context.Context) ([]domain.MovieWithReviews, error) {
	query := movieWithReviewsQuery + ` GROUP BY m.id ORDER BY avg_rating DESC NULLS LAST, m.title ASC, m.id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MovieWithReviews, 0)
	for rows.Next() {
		movie, err := scanMovieWithReviews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.Actors,
		&movie.ReleaseDate,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

type aggregatedReview struct {
	ID        uuid.UUID `json:"id"`
	MovieID   uuid.UUID `json:"movieId"`
	Username  string    `json:"username"`
	Review    string    `json:"review"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

func scanMovieWithReviews(row pgx.Row) (domain.MovieWithReviews, error) {
	var (
		movie       domain.MovieWithReviews
		reviewsJSON []byte
	)

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Genre,
		&movie.Actors,
		&movie.ReleaseDate,
		&movie.CreatedAt,
		&movie.UpdatedAt,
		&reviewsJSON,
		&movie.AvgRating,
	)
	if err != nil {
		return domain.MovieWithReviews{}, err
	}

	var raw []aggregatedReview
	if err := json.Unmarshal(reviewsJSON, &raw); err != nil {
		return domain.MovieWithReviews{}, fmt.Errorf("decode aggregated reviews: %w", err)
	}
	movie.Reviews = make([]domain.Review, 0, len(raw))
	for _, rv := range raw {
		movie.Reviews = append(movie.Reviews, domain.Review{
			ID:        rv.ID,
			MovieID:   rv.MovieID,
			Username:  rv.Username,
			Text:      rv.Review,
			Rating:    rv.Rating,
			CreatedAt: rv.CreatedAt,
		})
	}
	return movie, nil
}
