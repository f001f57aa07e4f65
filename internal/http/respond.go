package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movie-reviews/internal/apperr"
)

const maxRequestBody = 1 << 20 // 1 MiB

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// envelope is the body of every error and plain confirmation response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// decodeJSONBody reads a bounded JSON body into dst. Decode failures come back
// as validation errors.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxError), errors.Is(err, io.ErrUnexpectedEOF):
			return apperr.Wrap(apperr.KindValidation, err, "Malformed JSON payload")
		case errors.As(err, &typeError):
			return apperr.Wrap(apperr.KindValidation, err, fmt.Sprintf("Invalid value for field %s", typeError.Field))
		case errors.Is(err, io.EOF):
			return apperr.Wrap(apperr.KindValidation, err, "Request body cannot be empty")
		case errors.As(err, &maxBytesError):
			return apperr.Wrap(apperr.KindValidation, err, "Request body too large")
		default:
			return apperr.Wrap(apperr.KindValidation, err, "Unable to parse request body")
		}
	}
	return nil
}

// validateStruct runs the struct's validate tags, replacing any failure with message.
func validateStruct(dst interface{}, message string) error {
	if err := validate.Struct(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, message)
	}
	return nil
}

func parseIDParam(raw, message string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindValidation, err, message)
	}
	return id, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, envelope{Success: false, Message: message})
}

func (s *Server) respondMessage(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, envelope{Success: true, Message: message})
}

// writeError maps err onto the error taxonomy. Unclassified errors are logged
// and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Internal(err)
	}

	if typed.Kind() == apperr.KindInternal {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	} else {
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("kind", string(typed.Kind())).Msg("request rejected")
	}

	s.respondError(w, typed.Kind().Status(), typed.Message())
}
