package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/movie-reviews/internal/apperr"
	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

const dateLayout = "2006-01-02"

const (
	msgMovieRequired  = "Title, genre, and actors are required."
	msgMovieNotEmpty  = "Title, genre, and actors cannot be empty."
	msgInvalidMovieID = "Invalid movieId"
	msgMovieNotFound  = "Movie not found."
	msgInvalidDate    = "releaseDate must follow YYYY-MM-DD format"
)

type movieCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Genre       string   `json:"genre" validate:"required"`
	Actors      []string `json:"actors" validate:"required,min=1,dive,required"`
	ReleaseDate string   `json:"releaseDate"`
}

type movieUpdateRequest struct {
	Title       *string   `json:"title" validate:"omitnil,min=1"`
	Genre       *string   `json:"genre" validate:"omitnil,min=1"`
	Actors      *[]string      `json:"actors" validate:"omitnil,min=1,dive,required"`
	ReleaseDate nullableString `json:"releaseDate"`
}

// nullableString tells an absent field apart from an explicit null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type movieResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	Actors      []string  `json:"actors"`
	ReleaseDate *string   `json:"releaseDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type movieWithReviewsResponse struct {
	movieResponse
	Reviews   []reviewResponse `json:"reviews"`
	AvgRating *float64         `json:"avgRating"`
}

type movieCreatedResponse struct {
	Movie movieResponse `json:"movie"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	if wantsReviews(r) {
		movies, err := s.repo.Movies.ListWithReviews(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		items := make([]movieWithReviewsResponse, 0, len(movies))
		for _, movie := range movies {
			items = append(items, toMovieWithReviewsResponse(movie))
		}
		s.respondJSON(w, http.StatusOK, items)
		return
	}

	movies, err := s.repo.Movies.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]movieResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Genre = strings.TrimSpace(req.Genre)
	req.Actors = trimAll(req.Actors)
	if err := validateStruct(&req, msgMovieRequired); err != nil {
		s.writeError(w, r, err)
		return
	}

	var releaseDate *time.Time
	if strings.TrimSpace(req.ReleaseDate) != "" {
		parsed, err := parseReleaseDate(req.ReleaseDate)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		releaseDate = &parsed
	}

	movie, err := s.repo.Movies.Create(r.Context(), repository.MovieCreateParams{
		Title:       req.Title,
		Genre:       req.Genre,
		Actors:      req.Actors,
		ReleaseDate: releaseDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, movieCreatedResponse{Movie: toMovieResponse(movie)})
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "movieId"), msgInvalidMovieID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsReviews(r) {
		movie, err := s.repo.Movies.GetWithReviews(r.Context(), id)
		if err != nil {
			s.writeMovieError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, toMovieWithReviewsResponse(movie))
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), id)
	if err != nil {
		s.writeMovieError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "movieId"), msgInvalidMovieID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req movieUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Title = trimPtr(req.Title)
	req.Genre = trimPtr(req.Genre)
	if req.Actors != nil {
		actors := trimAll(*req.Actors)
		req.Actors = &actors
	}
	if err := validateStruct(&req, msgMovieNotEmpty); err != nil {
		s.writeError(w, r, err)
		return
	}

	params := repository.MovieUpdateParams{
		Title: req.Title,
		Genre: req.Genre,
	}
	if req.Actors != nil {
		params.Actors = *req.Actors
	}
	if req.ReleaseDate.Set {
		if req.ReleaseDate.Value == nil || strings.TrimSpace(*req.ReleaseDate.Value) == "" {
			params.ClearReleaseDate = true
		} else {
			parsed, err := parseReleaseDate(*req.ReleaseDate.Value)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			params.ReleaseDate = &parsed
		}
	}

	movie, err := s.repo.Movies.Update(r.Context(), id, params)
	if err != nil {
		s.writeMovieError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "movieId"), msgInvalidMovieID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.Movies.Delete(r.Context(), id); err != nil {
		s.writeMovieError(w, r, err)
		return
	}
	s.respondMessage(w, http.StatusOK, "Movie deleted successfully.")
}

func (s *Server) writeMovieError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		err = apperr.Wrap(apperr.KindNotFound, err, msgMovieNotFound)
	}
	s.writeError(w, r, err)
}

func wantsReviews(r *http.Request) bool {
	return r.URL.Query().Get("reviews") == "true"
}

// parseReleaseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseReleaseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindValidation, err, msgInvalidDate)
	}
	return t.UTC(), nil
}

func toMovieResponse(movie domain.Movie) movieResponse {
	resp := movieResponse{
		ID:        movie.ID,
		Title:     movie.Title,
		Genre:     movie.Genre,
		Actors:    movie.Actors,
		CreatedAt: movie.CreatedAt,
		UpdatedAt: movie.UpdatedAt,
	}
	if resp.Actors == nil {
		resp.Actors = []string{}
	}
	if movie.ReleaseDate != nil {
		date := movie.ReleaseDate.Format(dateLayout)
		resp.ReleaseDate = &date
	}
	return resp
}

func toMovieWithReviewsResponse(movie domain.MovieWithReviews) movieWithReviewsResponse {
	reviews := make([]reviewResponse, 0, len(movie.Reviews))
	for _, review := range movie.Reviews {
		reviews = append(reviews, toReviewResponse(review, nil))
	}
	return movieWithReviewsResponse{
		movieResponse: toMovieResponse(movie.Movie),
		Reviews:       reviews,
		AvgRating:     movie.AvgRating,
	}
}

func trimPtr(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	return &val
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
