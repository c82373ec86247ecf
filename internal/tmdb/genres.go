package tmdb

// DefaultGenreLabels maps TMDb genre ids to human-readable labels. The
// mapper receives this table (or a previously fetched one) via injection
// so normalization stays free of network calls.
var DefaultGenreLabels = map[int64]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
	99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy", 36: "History",
	27: "Horror", 10402: "Music", 9648: "Mystery", 10749: "Romance",
	878: "Science Fiction", 10770: "TV Movie", 53: "Thriller", 10752: "War", 37: "Western",
}

// KnownGenre reports whether the id exists in the provided lookup table.
func KnownGenre(labels map[int64]string, id int64) bool {
	_, ok := labels[id]
	return ok
}
