package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movie-reviews/internal/apperr"
	"github.com/Clark-Hu/movie-reviews/internal/auth"
)

// requestLogger attaches a request-scoped logger to the context and logs one
// line per completed request.
func requestLogger(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context())))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info().
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

// requireAuth rejects requests without a valid "JWT <token>" header and
// stores the caller's identity in the context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.KindAuthentication, err, "Unauthorized"))
			return
		}

		id, err := s.tokens.Parse(token)
		if err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.KindAuthentication, err, "Unauthorized"))
			return
		}

		ctx := auth.WithIdentity(r.Context(), id)
		logger := zerolog.Ctx(ctx).With().
			Str("user_id", id.UserID.String()).
			Str("username", id.Username).
			Logger()
		ctx = logger.WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authRateLimit throttles credential endpoints per client IP. A limit of zero disables it.
func (s *Server) authRateLimit() func(http.Handler) http.Handler {
	if s.cfg.AuthRateLimit <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		s.cfg.AuthRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		}),
	)
}
