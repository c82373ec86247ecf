package domain

import "time"

// Provenance records where a catalog entry originated.
type Provenance string

const (
	// ProvenanceManual marks records authored by hand in the admin UI.
	ProvenanceManual Provenance = "manual"
	// ProvenanceTMDb marks records imported from the metadata service.
	ProvenanceTMDb Provenance = "tmdb"
)

// MaxCastMembers bounds the cast list stored per record.
const MaxCastMembers = 10

// CastMember is one credited actor on a catalog record.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	ImageURL  string `json:"imageUrl"`
	Order     int    `json:"order"`
}

// CatalogRecord is the canonical movie entity persisted by the service.
// ExternalID is nil for manually authored records and set for imported
// ones; it is the only dedup key.
type CatalogRecord struct {
	ID             string
	ExternalID     *int64
	Name           string
	Description    string
	Genre          string
	Language       string
	ReleaseYear    int
	RuntimeMinutes int
	Rating         float64
	VoteCount      int64
	PosterURL      *string
	BackdropURL    *string
	Cast           []CastMember
	Provenance     Provenance
	ReviewAverage  float64
	ReviewCount    int64
	WatchCount     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
