package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Duzcc/Netflixfake-sub000/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict indicates a concurrent write raced on the same external id.
var ErrConflict = errors.New("repository: concurrent write conflict")

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Catalog *CatalogRepository
	Stats   *StatsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Catalog: &CatalogRepository{pool: pool},
		Stats:   &StatsRepository{pool: pool},
	}
}
