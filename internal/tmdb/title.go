package tmdb

// CastCredit is one cast entry as reported by the credits endpoint.
type CastCredit struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// Title is the upstream representation of one movie. It is fetched fresh
// per request and never persisted as-is; Normalize converts it into the
// catalog shape.
type Title struct {
	ID               int64
	Name             string
	Overview         string
	OriginalLanguage string
	ReleaseDate      string // YYYY-MM-DD, empty when unannounced
	VoteAverage      float64
	VoteCount        int64
	RuntimeMinutes   int
	PosterPath       string
	BackdropPath     string
	GenreIDs         []int64
	Cast             []CastCredit
}
