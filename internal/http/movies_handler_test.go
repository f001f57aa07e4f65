package httpserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func mustCreateMovieHTTP(t testing.TB, srv *Server, token, title string) movieResponse {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"genre":"Drama","actors":["Lead"],"releaseDate":"2020-01-01"}`, title)
	rec := doRequest(t, srv, http.MethodPost, "/movies", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("create movie status = %d, body = %s", rec.Code, rec.Body.String())
	}
	return decodeBody[movieCreatedResponse](t, rec).Movie
}

func mustCreateReviewHTTP(t testing.TB, srv *Server, token string, movieID uuid.UUID, rating float64) {
	t.Helper()
	body := fmt.Sprintf(`{"movieId":%q,"username":"critic","review":"fine","rating":%v}`, movieID.String(), rating)
	rec := doRequest(t, srv, http.MethodPost, "/Reviews", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("create review status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateMovie(t *testing.T) {
	srv := buildTestServer(t)
	token := mustSignin(t, srv, "moviefan")

	rec := doRequest(t, srv, http.MethodPost, "/movies", `{"title":"X","genre":"Y","actors":["Z"],"releaseDate":"2020-01-01"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	movie := decodeBody[movieCreatedResponse](t, rec).Movie
	if movie.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if movie.Title != "X" || movie.Genre != "Y" || len(movie.Actors) != 1 || movie.Actors[0] != "Z" {
		t.Fatalf("unexpected movie: %+v", movie)
	}
	if movie.ReleaseDate == nil || *movie.ReleaseDate != "2020-01-01" {
		t.Fatalf("releaseDate = %v, want 2020-01-01", movie.ReleaseDate)
	}

	rec = doRequest(t, srv, http.MethodGet, "/movies/"+movie.ID.String(), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	if got := decodeBody[movieResponse](t, rec); got.ID != movie.ID {
		t.Fatalf("get returned %s, want %s", got.ID, movie.ID)
	}
}

func TestCreateMovieValidation(t *testing.T) {
	srv := buildTestServer(t)
	token := mustSignin(t, srv, "validator")

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"genre":"Y","actors":["Z"]}`},
		{"missing genre", `{"title":"X","actors":["Z"]}`},
		{"missing actors", `{"title":"X","genre":"Y"}`},
		{"empty actors", `{"title":"X","genre":"Y","actors":[]}`},
		{"blank actor", `{"title":"X","genre":"Y","actors":["  "]}`},
		{"bad release date", `{"title":"X","genre":"Y","actors":["Z"],"releaseDate":"01/01/2020"}`},
		{"malformed json", `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/movies", tt.body, token)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetMovieWithReviews(t *testing.T) {
	srv := buildTestServer(t)
	token := mustSignin(t, srv, "aggregator")

	rated := mustCreateMovieHTTP(t, srv, token, "Rated")
	unrated := mustCreateMovieHTTP(t, srv, token, "Unrated")
	mustCreateReviewHTTP(t, srv, token, rated.ID, 3)
	mustCreateReviewHTTP(t, srv, token, rated.ID, 5)

	rec := doRequest(t, srv, http.MethodGet, "/movies/"+rated.ID.String()+"?reviews=true", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decodeBody[movieWithReviewsResponse](t, rec)
	if got.AvgRating == nil || *got.AvgRating != 4 {
		t.Fatalf("avgRating = %v, want 4", got.AvgRating)
	}
	if len(got.Reviews) != 2 {
		t.Fatalf("reviews = %d, want 2", len(got.Reviews))
	}

	rec = doRequest(t, srv, http.MethodGet, "/movies/"+unrated.ID.String()+"?reviews=true", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	raw := decodeBody[map[string]any](t, rec)
	if v, ok := raw["avgRating"]; !ok || v != nil {
		t.Fatalf("avgRating = %v (present=%v), want explicit null", v, ok)
	}

	rec = doRequest(t, srv, http.MethodGet, "/movies/"+uuid.NewString()+"?reviews=true", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("absent movie status = %d, want 404", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodGet, "/movies/not-an-id?reviews=true", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestListMoviesWithReviewsOrdering(t *testing.T) {
	srv := buildTestServer(t)
	token := mustSignin(t, srv, "lister")

	b := mustCreateMovieHTTP(t, srv, token, "B")
	a := mustCreateMovieHTTP(t, srv, token, "A")
	c := mustCreateMovieHTTP(t, srv, token, "C")
	mustCreateMovieHTTP(t, srv, token, "D Unrated")
	mustCreateReviewHTTP(t, srv, token, b.ID, 4)
	mustCreateReviewHTTP(t, srv, token, a.ID, 4)
	mustCreateReviewHTTP(t, srv, token, c.ID, 5)

	rec := doRequest(t, srv, http.MethodGet, "/movies?reviews=true", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	items := decodeBody[[]movieWithReviewsResponse](t, rec)
	want := []string{"C", "A", "B", "D Unrated"}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d", len(items), len(want))
	}
	for i, title := range want {
		if items[i].Title != title {
			t.Fatalf("position %d = %s, want %s", i, items[i].Title, title)
		}
	}

	rec = doRequest(t, srv, http.MethodGet, "/movies", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("plain list status = %d, want 200", rec.Code)
	}
	plain := decodeBody[[]map[string]any](t, rec)
	if len(plain) != 4 {
		t.Fatalf("plain list = %d, want 4", len(plain))
	}
	if _, ok := plain[0]["avgRating"]; ok {
		t.Fatalf("plain list must not carry avgRating")
	}
}

func TestUpdateMovie(t *testing.T) {
	srv := buildTestServer(t)
	token := mustSignin(t, srv, "editor")
	movie := mustCreateMovieHTTP(t, srv, token, "Original")

	rec := doRequest(t, srv, http.MethodPost, "/movies/"+movie.ID.String(), `{"genre":"Comedy"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	updated := decodeBody[movieResponse](t, rec)
	if updated.Genre != "Comedy" || updated.Title != "Original" || len(updated.Actors) != 1 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	rec = doRequest(t, srv, http.MethodPatch, "/movies/"+movie.ID.String(), `{"actors":["A","B"],"releaseDate":"1999-12-31"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want 200", rec.Code)
	}
	updated = decodeBody[movieResponse](t, rec)
	if len(updated.Actors) != 2 || updated.ReleaseDate == nil || *updated.ReleaseDate != "1999-12-31" {
		t.Fatalf("unexpected patch result: %+v", updated)
	}

	rec = doRequest(t, srv, http.MethodPost, "/movies/"+movie.ID.String(), `{"title":"Renamed"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, want 200", rec.Code)
	}
	if got := decodeBody[movieResponse](t, rec); got.ReleaseDate == nil || *got.ReleaseDate != "1999-12-31" {
		t.Fatalf("absent releaseDate must be kept, got %v", got.ReleaseDate)
	}

	rec = doRequest(t, srv, http.MethodPatch, "/movies/"+movie.ID.String(), `{"releaseDate":null}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d, want 200", rec.Code)
	}
	if got := decodeBody[movieResponse](t, rec); got.ReleaseDate != nil {
		t.Fatalf("releaseDate = %q, want null after explicit null", *got.ReleaseDate)
	}

	rec = doRequest(t, srv, http.MethodPost, "/movies/"+movie.ID.String(), `{"releaseDate":"2001-02-03"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, srv, http.MethodPost, "/movies/"+movie.ID.String(), `{"releaseDate":""}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear with empty string status = %d, want 200", rec.Code)
	}
	if got := decodeBody[movieResponse](t, rec); got.ReleaseDate != nil {
		t.Fatalf("releaseDate = %q, want null after empty string", *got.ReleaseDate)
	}

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"malformed id", "/movies/123", `{"title":"X"}`, http.StatusBadRequest},
		{"absent id", "/movies/" + uuid.NewString(), `{"title":"X"}`, http.StatusNotFound},
		{"empty actors", "/movies/" + movie.ID.String(), `{"actors":[]}`, http.StatusBadRequest},
		{"blank title", "/movies/" + movie.ID.String(), `{"title":" "}`, http.StatusBadRequest},
		{"bad release date", "/movies/" + movie.ID.String(), `{"releaseDate":"31/12/1999"}`, http.StatusBadRequest},
		{"release date not a string", "/movies/" + movie.ID.String(), `{"releaseDate":19991231}`, http.StatusBadRequest},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, tt.path, tt.body, token)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDeleteMovie(t *testing.T) {
	srv := buildTestServer(t)
	token := mustSignin(t, srv, "deleter")
	movie := mustCreateMovieHTTP(t, srv, token, "Doomed")

	rec := doRequest(t, srv, http.MethodDelete, "/movies/"+movie.ID.String(), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decodeBody[envelope](t, rec); !resp.Success {
		t.Fatalf("delete success = false")
	}

	rec = doRequest(t, srv, http.MethodDelete, "/movies/"+movie.ID.String(), "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
	if resp := decodeBody[envelope](t, rec); resp.Message != msgMovieNotFound {
		t.Fatalf("message = %q, want %q", resp.Message, msgMovieNotFound)
	}

	rec = doRequest(t, srv, http.MethodDelete, "/movies/xyz", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed id status = %d, want 400", rec.Code)
	}
	if resp := decodeBody[envelope](t, rec); resp.Message != msgInvalidMovieID {
		t.Fatalf("message = %q, want %q", resp.Message, msgInvalidMovieID)
	}
}
