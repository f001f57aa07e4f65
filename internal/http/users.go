package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Clark-Hu/movie-reviews/internal/apperr"
	"github.com/Clark-Hu/movie-reviews/internal/auth"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

type signupRequest struct {
	Name     *string `json:"name"`
	Username string  `json:"username" validate:"required"`
	Password string  `json:"password" validate:"required"`
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signinResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(&req, "Please include both username and password to signup."); err != nil {
		s.writeError(w, r, err)
		return
	}

	_, err := s.repo.Users.Create(r.Context(), repository.UserCreateParams{
		Name:     normalizeStringPtr(req.Name),
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.writeError(w, r, apperr.Wrap(apperr.KindConflict, err, "A user with that username already exists."))
			return
		}
		s.writeError(w, r, err)
		return
	}

	s.respondMessage(w, http.StatusCreated, "Successfully created new user.")
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.repo.Users.FindByUsername(r.Context(), strings.TrimSpace(req.Username), true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.writeError(w, r, apperr.Wrap(apperr.KindAuthentication, err, "Authentication failed. User not found."))
			return
		}
		s.writeError(w, r, err)
		return
	}

	if !s.repo.Users.VerifyPassword(user, req.Password) {
		s.writeError(w, r, apperr.Authentication("Authentication failed. Incorrect password."))
		return
	}

	token, err := s.tokens.Issue(time.Now(), auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, signinResponse{Success: true, Token: auth.HeaderValue(token)})
}

func normalizeStringPtr(ptr *string) *string {
	if ptr == nil {
		return nil
	}
	val := strings.TrimSpace(*ptr)
	if val == "" {
		return nil
	}
	return &val
}
