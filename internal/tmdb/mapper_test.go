package tmdb

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
)

func testMapper() *Mapper {
	return NewMapper(DefaultGenreLabels, "https://image.tmdb.org/t/p")
}

func validTitle() Title {
	return Title{
		ID:               603,
		Name:             "The Matrix",
		Overview:         "A hacker learns the truth.",
		OriginalLanguage: "en",
		ReleaseDate:      "1999-03-31",
		VoteAverage:      8.2,
		VoteCount:        24000,
		RuntimeMinutes:   136,
		PosterPath:       "/matrix.jpg",
		BackdropPath:     "/matrix-bg.jpg",
		GenreIDs:         []int64{28, 878},
		Cast: []CastCredit{
			{Name: "Keanu Reeves", Character: "Neo", ProfilePath: "/keanu.jpg", Order: 0},
			{Name: "Carrie-Anne Moss", Character: "Trinity", Order: 1},
		},
	}
}

func TestNormalize(t *testing.T) {
	record, err := testMapper().Normalize(validTitle())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if record.ExternalID == nil || *record.ExternalID != 603 {
		t.Fatalf("ExternalID = %v, want 603", record.ExternalID)
	}
	if record.Name != "The Matrix" {
		t.Fatalf("Name = %q", record.Name)
	}
	if record.ReleaseYear != 1999 {
		t.Fatalf("ReleaseYear = %d, want 1999", record.ReleaseYear)
	}
	if record.Language != "EN" {
		t.Fatalf("Language = %q, want EN", record.Language)
	}
	if record.Genre != "Action, Science Fiction" {
		t.Fatalf("Genre = %q", record.Genre)
	}
	if record.Rating != 8.2 || record.VoteCount != 24000 {
		t.Fatalf("rating passthrough broken: %v / %v", record.Rating, record.VoteCount)
	}
	if record.PosterURL == nil || *record.PosterURL != "https://image.tmdb.org/t/p/w500/matrix.jpg" {
		t.Fatalf("PosterURL = %v", record.PosterURL)
	}
	if record.BackdropURL == nil || *record.BackdropURL != "https://image.tmdb.org/t/p/w1280/matrix-bg.jpg" {
		t.Fatalf("BackdropURL = %v", record.BackdropURL)
	}
	if record.Provenance != domain.ProvenanceTMDb {
		t.Fatalf("Provenance = %q", record.Provenance)
	}
	if len(record.Cast) != 2 {
		t.Fatalf("cast len = %d, want 2", len(record.Cast))
	}
	if record.Cast[0].ImageURL != "https://image.tmdb.org/t/p/w185/keanu.jpg" {
		t.Fatalf("cast image = %q", record.Cast[0].ImageURL)
	}
	if record.Cast[1].ImageURL != PlaceholderProfileImage {
		t.Fatalf("missing profile should use placeholder, got %q", record.Cast[1].ImageURL)
	}
}

func TestNormalizeValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Title)
		reason string
	}{
		{
			name:   "non-positive id",
			mutate: func(ti *Title) { ti.ID = 0 },
			reason: "external id",
		},
		{
			name:   "empty title",
			mutate: func(ti *Title) { ti.Name = "   " },
			reason: "empty title",
		},
		{
			name:   "missing release date",
			mutate: func(ti *Title) { ti.ReleaseDate = "" },
			reason: "missing release date",
		},
		{
			name:   "garbage release date",
			mutate: func(ti *Title) { ti.ReleaseDate = "sometime" },
			reason: "invalid release date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title := validTitle()
			tt.mutate(&title)
			_, err := testMapper().Normalize(title)
			var verr *ValidationError
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if !strings.Contains(verr.Reason, tt.reason) {
				t.Fatalf("reason = %q, want contains %q", verr.Reason, tt.reason)
			}
		})
	}
}

func TestNormalizeCastCapAndOrdering(t *testing.T) {
	title := validTitle()
	title.Cast = nil
	// Billing order shuffled on purpose.
	for i := 14; i >= 0; i-- {
		title.Cast = append(title.Cast, CastCredit{
			Name:  fmt.Sprintf("Actor %d", i),
			Order: i,
		})
	}

	record, err := testMapper().Normalize(title)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(record.Cast) != domain.MaxCastMembers {
		t.Fatalf("cast len = %d, want %d", len(record.Cast), domain.MaxCastMembers)
	}
	for i, member := range record.Cast {
		if member.Order != i {
			t.Fatalf("cast[%d].Order = %d, want %d", i, member.Order, i)
		}
	}
}

func TestNormalizeLanguageDefault(t *testing.T) {
	title := validTitle()
	title.OriginalLanguage = ""
	record, err := testMapper().Normalize(title)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if record.Language != "EN" {
		t.Fatalf("Language = %q, want EN default", record.Language)
	}
}

func TestNormalizeUnknownGenresSkipped(t *testing.T) {
	title := validTitle()
	title.GenreIDs = []int64{28, 999999}
	record, err := testMapper().Normalize(title)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if record.Genre != "Action" {
		t.Fatalf("Genre = %q, want Action", record.Genre)
	}
}
