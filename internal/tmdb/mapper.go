package tmdb

import (
	"sort"
	"strings"
	"time"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
)

// PlaceholderProfileImage substitutes for cast members without a profile
// image so the stored cast list never carries empty image references.
const PlaceholderProfileImage = "/images/cast-placeholder.png"

const (
	posterSize   = "w500"
	backdropSize = "w1280"
	profileSize  = "w185"
)

// Mapper converts upstream titles into catalog records. The genre lookup
// table is injected so the conversion stays pure and deterministic.
type Mapper struct {
	GenreLabels  map[int64]string
	ImageBaseURL string
}

// NewMapper builds a Mapper over the given genre table and image CDN base.
func NewMapper(genreLabels map[int64]string, imageBaseURL string) *Mapper {
	if genreLabels == nil {
		genreLabels = DefaultGenreLabels
	}
	return &Mapper{
		GenreLabels:  genreLabels,
		ImageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// Normalize converts one upstream title into the catalog record shape.
// It fails rather than partially applying when the title is too incomplete
// to catalog: missing id, empty name, or no release date (no year).
func (m *Mapper) Normalize(t Title) (domain.CatalogRecord, error) {
	if t.ID <= 0 {
		return domain.CatalogRecord{}, &ValidationError{Reason: "external id must be positive"}
	}
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return domain.CatalogRecord{}, &ValidationError{Reason: "empty title"}
	}
	if t.ReleaseDate == "" {
		return domain.CatalogRecord{}, &ValidationError{Reason: "missing release date"}
	}
	released, err := time.Parse("2006-01-02", t.ReleaseDate)
	if err != nil {
		return domain.CatalogRecord{}, &ValidationError{Reason: "invalid release date " + t.ReleaseDate}
	}

	externalID := t.ID
	record := domain.CatalogRecord{
		ExternalID:     &externalID,
		Name:           name,
		Description:    t.Overview,
		Genre:          m.genreLabel(t.GenreIDs),
		Language:       normalizeLanguage(t.OriginalLanguage),
		ReleaseYear:    released.Year(),
		RuntimeMinutes: t.RuntimeMinutes,
		Rating:         t.VoteAverage,
		VoteCount:      t.VoteCount,
		PosterURL:      m.imageURL(posterSize, t.PosterPath),
		BackdropURL:    m.imageURL(backdropSize, t.BackdropPath),
		Cast:           m.normalizeCast(t.Cast),
		Provenance:     domain.ProvenanceTMDb,
	}
	return record, nil
}

func (m *Mapper) genreLabel(ids []int64) string {
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if label, ok := m.GenreLabels[id]; ok {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, ", ")
}

func (m *Mapper) normalizeCast(credits []CastCredit) []domain.CastMember {
	sorted := make([]CastCredit, len(credits))
	copy(sorted, credits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	if len(sorted) > domain.MaxCastMembers {
		sorted = sorted[:domain.MaxCastMembers]
	}

	cast := make([]domain.CastMember, 0, len(sorted))
	for _, c := range sorted {
		image := PlaceholderProfileImage
		if c.ProfilePath != "" {
			image = m.ImageBaseURL + "/" + profileSize + c.ProfilePath
		}
		cast = append(cast, domain.CastMember{
			Name:      c.Name,
			Character: c.Character,
			ImageURL:  image,
			Order:     c.Order,
		})
	}
	return cast
}

func (m *Mapper) imageURL(size, path string) *string {
	if path == "" {
		return nil
	}
	full := m.ImageBaseURL + "/" + size + path
	return &full
}

func normalizeLanguage(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "EN"
	}
	return code
}
