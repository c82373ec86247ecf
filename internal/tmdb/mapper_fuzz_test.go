package tmdb

import (
	"testing"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
)

func FuzzNormalize(f *testing.F) {
	f.Add(int64(603), "The Matrix", "1999-03-31", "en", "/poster.jpg", 8.2)
	f.Add(int64(1), "", "", "", "", 0.0)

	mapper := NewMapper(DefaultGenreLabels, "https://image.tmdb.org/t/p")

	f.Fuzz(func(t *testing.T, id int64, name, releaseDate, language, profilePath string, rating float64) {
		title := Title{
			ID:               id,
			Name:             name,
			ReleaseDate:      releaseDate,
			OriginalLanguage: language,
			VoteAverage:      rating,
			Cast: []CastCredit{
				{Name: "Someone", ProfilePath: profilePath, Order: 0},
			},
		}

		record, err := mapper.Normalize(title)
		if err != nil {
			return
		}

		if record.ExternalID == nil || *record.ExternalID <= 0 {
			t.Fatalf("normalized record must carry a positive external id")
		}
		if record.Name == "" {
			t.Fatalf("normalized record must carry a name")
		}
		if record.Language == "" {
			t.Fatalf("language should never be empty")
		}
		if record.Provenance != domain.ProvenanceTMDb {
			t.Fatalf("provenance = %q", record.Provenance)
		}
		for _, member := range record.Cast {
			if member.ImageURL == "" {
				t.Fatalf("cast image should never be empty")
			}
		}
	})
}
