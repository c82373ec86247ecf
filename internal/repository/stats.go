package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
)

// StatsRepository reads the rolling catalog counters. The counters are
// written by CatalogRepository inside the same transaction as each catalog
// mutation, so Get never scans the movies table.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// Get returns the current counters.
func (r *StatsRepository) Get(ctx context.Context) (domain.CatalogStats, error) {
	const query = `SELECT total_movies, tmdb_movies, manual_movies FROM catalog_stats`

	var stats domain.CatalogStats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.TotalMovies, &stats.TMDbMovies, &stats.ManualMovies)
	if err != nil {
		return domain.CatalogStats{}, err
	}
	return stats, nil
}

// Recompute rebuilds the counters from the movies table. Recovery tool for
// counter drift; normal operation never needs it.
func (r *StatsRepository) Recompute(ctx context.Context) (domain.CatalogStats, error) {
	const query = `
        UPDATE catalog_stats SET
            total_movies = (SELECT COUNT(*) FROM movies),
            tmdb_movies = (SELECT COUNT(*) FROM movies WHERE provenance = 'tmdb'),
            manual_movies = (SELECT COUNT(*) FROM movies WHERE provenance = 'manual'),
            updated_at = now()
        RETURNING total_movies, tmdb_movies, manual_movies
    `

	var stats domain.CatalogStats
	err := r.pool.QueryRow(ctx, query).Scan(&stats.TotalMovies, &stats.TMDbMovies, &stats.ManualMovies)
	if err != nil {
		return domain.CatalogStats{}, err
	}
	return stats, nil
}
