package domain

// CatalogStats holds the rolling dashboard counters. The counters are
// maintained transactionally alongside catalog writes so reads stay cheap.
type CatalogStats struct {
	TotalMovies  int64
	TMDbMovies   int64
	ManualMovies int64
}

// TMDbPercentage returns the imported share of the catalog, rounded to
// one decimal place.
func (s CatalogStats) TMDbPercentage() float64 {
	if s.TotalMovies == 0 {
		return 0
	}
	pct := float64(s.TMDbMovies) / float64(s.TotalMovies) * 100
	return float64(int64(pct*10+0.5)) / 10
}
