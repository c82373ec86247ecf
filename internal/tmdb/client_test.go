package tmdb

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, "test-key", 2*time.Second, 100, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func TestMovieByID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/movie/603" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("api_key missing from query")
		}
		if r.URL.Query().Get("append_to_response") != "credits" {
			t.Errorf("append_to_response = %q", r.URL.Query().Get("append_to_response"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
            "id": 603,
            "title": "The Matrix",
            "overview": "A hacker learns the truth.",
            "original_language": "en",
            "release_date": "1999-03-31",
            "vote_average": 8.2,
            "vote_count": 24000,
            "runtime": 136,
            "poster_path": "/matrix.jpg",
            "genres": [{"id": 28, "name": "Action"}],
            "credits": {"cast": [{"name": "Keanu Reeves", "character": "Neo", "order": 0}]}
        }`))
	}))

	title, err := client.MovieByID(context.Background(), 603)
	if err != nil {
		t.Fatalf("MovieByID: %v", err)
	}
	if title.ID != 603 || title.Name != "The Matrix" {
		t.Fatalf("unexpected title: %+v", title)
	}
	if title.RuntimeMinutes != 136 {
		t.Fatalf("RuntimeMinutes = %d", title.RuntimeMinutes)
	}
	if len(title.GenreIDs) != 1 || title.GenreIDs[0] != 28 {
		t.Fatalf("GenreIDs = %v, want [28] from detail genres", title.GenreIDs)
	}
	if len(title.Cast) != 1 || title.Cast[0].Character != "Neo" {
		t.Fatalf("Cast = %+v", title.Cast)
	}
}

func TestMovieByIDErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				if !errors.As(err, &nf) || nf.ID != 42 {
					t.Fatalf("err = %v, want NotFoundError for 42", err)
				}
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var rl *RateLimitedError
				if !errors.As(err, &rl) {
					t.Fatalf("err = %v, want RateLimitedError", err)
				}
				if rl.RetryAfter != 3*time.Second {
					t.Fatalf("RetryAfter = %s, want 3s", rl.RetryAfter)
				}
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var tr *TransientError
				if !errors.As(err, &tr) || tr.Status != http.StatusBadGateway {
					t.Fatalf("err = %v, want TransientError 502", err)
				}
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"id": "not a number"`,
			check: func(t *testing.T, err error) {
				var fe *FatalError
				if !errors.As(err, &fe) {
					t.Fatalf("err = %v, want FatalError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "3")
				}
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			}))

			_, err := client.MovieByID(context.Background(), 42)
			if err == nil {
				t.Fatalf("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestPopularPaging(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/movie/popular" {
			t.Errorf("path = %s", r.URL.Path)
		}
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		if page == "1" {
			_, _ = w.Write([]byte(`{"page":1,"total_pages":2,"results":[{"id":1,"title":"A","release_date":"2020-01-01"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"page":2,"total_pages":2,"results":[{"id":2,"title":"B","release_date":"2020-01-02"}]}`))
	}))

	titles, hasMore, err := client.Popular(context.Background(), 1)
	if err != nil {
		t.Fatalf("Popular page 1: %v", err)
	}
	if !hasMore {
		t.Fatalf("expected hasMore on page 1")
	}
	if len(titles) != 1 || titles[0].ID != 1 {
		t.Fatalf("page 1 titles = %+v", titles)
	}

	titles, hasMore, err = client.Popular(context.Background(), 2)
	if err != nil {
		t.Fatalf("Popular page 2: %v", err)
	}
	if hasMore {
		t.Fatalf("expected hasMore=false on last page")
	}
	if len(titles) != 1 || titles[0].ID != 2 {
		t.Fatalf("page 2 titles = %+v", titles)
	}
}

func TestDiscoverByGenreQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/discover/movie" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("with_genres") != "28" {
			t.Errorf("with_genres = %q", r.URL.Query().Get("with_genres"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	}))

	titles, hasMore, err := client.DiscoverByGenre(context.Background(), 28, 1)
	if err != nil {
		t.Fatalf("DiscoverByGenre: %v", err)
	}
	if hasMore || len(titles) != 0 {
		t.Fatalf("expected empty final page, got %d titles hasMore=%v", len(titles), hasMore)
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-2", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, c := range cases {
		if got := parseRetryAfter(c.header); got != c.want {
			t.Fatalf("parseRetryAfter(%q) = %s, want %s", c.header, got, c.want)
		}
	}
}
