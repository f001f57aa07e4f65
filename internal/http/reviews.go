package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/movie-reviews/internal/apperr"
	"github.com/Clark-Hu/movie-reviews/internal/auth"
	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

type reviewCreateRequest struct {
	MovieID  string   `json:"movieId" validate:"required"`
	Username string   `json:"username"`
	Review   string   `json:"review" validate:"required"`
	Rating   *float64 `json:"rating" validate:"required"`
}

type reviewResponse struct {
	ID         uuid.UUID `json:"id"`
	MovieID    uuid.UUID `json:"movieId"`
	MovieTitle *string   `json:"movieTitle,omitempty"`
	Username   string    `json:"username"`
	Review     string    `json:"review"`
	Rating     float64   `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

type reviewCreatedResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Review  reviewResponse `json:"review"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.repo.Reviews.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, toReviewResponse(review.Review, review.MovieTitle))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.MovieID = strings.TrimSpace(req.MovieID)
	req.Review = strings.TrimSpace(req.Review)
	if err := validateStruct(&req, "movieId, username, review, and rating are required."); err != nil {
		s.writeError(w, r, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		if id, ok := auth.IdentityFromContext(r.Context()); ok {
			username = id.Username
		}
	}

	review, err := s.repo.Reviews.Create(r.Context(), repository.ReviewCreateParams{
		MovieID:  req.MovieID,
		Username: username,
		Review:   req.Review,
		Rating:   *req.Rating,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, reviewCreatedResponse{
		Success: true,
		Message: "Review created!",
		Review:  toReviewResponse(review, nil),
	})
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "reviewId"), "Invalid reviewId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.Reviews.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = apperr.Wrap(apperr.KindNotFound, err, "Review not found.")
		}
		s.writeError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Review deleted successfully.")
}

func toReviewResponse(review domain.Review, movieTitle *string) reviewResponse {
	return reviewResponse{
		ID:         review.ID,
		MovieID:    review.MovieID,
		MovieTitle: movieTitle,
		Username:   review.Username,
		Review:     review.Text,
		Rating:     review.Rating,
		CreatedAt:  review.CreatedAt,
	}
}
