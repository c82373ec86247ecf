package httpserver

import (
	"net/url"
	"testing"

	"github.com/Duzcc/Netflixfake-sub000/internal/config"
	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
)

func TestBuildCatalogFilters(t *testing.T) {
	query := url.Values{}
	query.Set("q", "  matrix  ")
	query.Set("genre", "Action")
	query.Set("year", "1999")
	query.Set("provenance", "tmdb")
	query.Set("limit", "10")

	filters, err := buildCatalogFilters(query)
	if err != nil {
		t.Fatalf("buildCatalogFilters: %v", err)
	}
	if filters.Query == nil || *filters.Query != "matrix" {
		t.Fatalf("query filter = %v, want matrix", filters.Query)
	}
	if filters.Genre == nil || *filters.Genre != "Action" {
		t.Fatalf("genre filter = %v", filters.Genre)
	}
	if filters.Year == nil || *filters.Year != 1999 {
		t.Fatalf("year filter = %v", filters.Year)
	}
	if filters.Provenance == nil || *filters.Provenance != domain.ProvenanceTMDb {
		t.Fatalf("provenance filter = %v", filters.Provenance)
	}
	if filters.Limit != 10 {
		t.Fatalf("limit = %d, want 10", filters.Limit)
	}
}

func TestBuildCatalogFiltersRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric year", "year", "abc"},
		{"non-numeric limit", "limit", "ten"},
		{"unknown provenance", "provenance", "scraped"},
		{"garbage cursor", "cursor", "!!!not-base64!!!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query := url.Values{}
			query.Set(tc.key, tc.value)
			if _, err := buildCatalogFilters(query); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestBuildCatalogFiltersEmptyQuery(t *testing.T) {
	filters, err := buildCatalogFilters(url.Values{})
	if err != nil {
		t.Fatalf("buildCatalogFilters: %v", err)
	}
	if filters.Query != nil || filters.Genre != nil || filters.Year != nil || filters.Provenance != nil {
		t.Fatalf("expected zero filters, got %+v", filters)
	}
}

func TestVerifyBearer(t *testing.T) {
	srv := &Server{cfg: config.Config{AuthToken: "secret"}}

	cases := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid token", "Bearer secret", true},
		{"token with padding", "Bearer  secret ", true},
		{"wrong token", "Bearer nope", false},
		{"missing prefix", "secret", false},
		{"empty header", "", false},
		{"basic auth", "Basic c2VjcmV0", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := srv.verifyBearer(tc.header); got != tc.want {
				t.Fatalf("verifyBearer(%q) = %v, want %v", tc.header, got, tc.want)
			}
		})
	}
}
