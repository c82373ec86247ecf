package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
)

// CatalogRepository provides persistence helpers for catalog records.
// It is the sole mutation surface for TMDb-origin rows; the partial unique
// index on tmdb_id enforces the one-record-per-external-id invariant.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

const catalogColumns = `
    id,
    tmdb_id,
    title,
    overview,
    genre,
    language,
    release_year,
    runtime_minutes,
    rating,
    vote_count,
    poster_url,
    backdrop_url,
    cast_members,
    provenance,
    review_average,
    review_count,
    watch_count,
    created_at,
    updated_at
`

// ImportWrite reports what an imported-record upsert did.
type ImportWrite struct {
	Inserted bool
	Skipped  bool
}

// ListFilters encapsulates search and pagination options for the catalog.
type ListFilters struct {
	Query      *string
	Genre      *string
	Year       *int
	Provenance *domain.Provenance
	Limit      int
	Cursor     *Cursor
}

// Cursor allows stable pagination by created_at/id.
type Cursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// ListResult returns the paginated payload.
type ListResult struct {
	Items      []domain.CatalogRecord
	NextCursor *string
}

// Insert stores a new catalog record and bumps the rolling stats counters
// in the same transaction.
func (r *CatalogRepository) Insert(ctx context.Context, record domain.CatalogRecord) (domain.CatalogRecord, error) {
	castJSON, err := json.Marshal(castOrEmpty(record.Cast))
	if err != nil {
		return domain.CatalogRecord{}, fmt.Errorf("marshal cast: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.CatalogRecord{}, err
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
        INSERT INTO movies (tmdb_id, title, overview, genre, language, release_year,
                            runtime_minutes, rating, vote_count, poster_url, backdrop_url,
                            cast_members, provenance)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING %s
    `, catalogColumns)

	row := tx.QueryRow(ctx, query,
		record.ExternalID, record.Name, record.Description, record.Genre, record.Language,
		record.ReleaseYear, record.RuntimeMinutes, record.Rating, record.VoteCount,
		record.PosterURL, record.BackdropURL, castJSON, record.Provenance)
	stored, err := scanRecord(row)
	if err != nil {
		return domain.CatalogRecord{}, mapWriteError(err)
	}

	if err := bumpStats(ctx, tx, stored.Provenance, 1); err != nil {
		return domain.CatalogRecord{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.CatalogRecord{}, err
	}
	return stored, nil
}

// UpsertImported writes a TMDb-origin record keyed by its external id.
// With overwrite off an existing row is left untouched (Skipped). With
// overwrite on, only the TMDb-sourced columns are replaced; review and
// watch counters belong to other subsystems and are never written here.
// The conditional write runs as a single statement against the unique
// index, so two workers racing on the same id cannot both insert.
func (r *CatalogRepository) UpsertImported(ctx context.Context, record domain.CatalogRecord, overwrite bool) (domain.CatalogRecord, ImportWrite, error) {
	if record.ExternalID == nil {
		return domain.CatalogRecord{}, ImportWrite{}, fmt.Errorf("imported record requires an external id")
	}
	castJSON, err := json.Marshal(castOrEmpty(record.Cast))
	if err != nil {
		return domain.CatalogRecord{}, ImportWrite{}, fmt.Errorf("marshal cast: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.CatalogRecord{}, ImportWrite{}, err
	}
	defer tx.Rollback(ctx)

	var (
		stored   domain.CatalogRecord
		inserted bool
	)

	if overwrite {
		query := fmt.Sprintf(`
            INSERT INTO movies (tmdb_id, title, overview, genre, language, release_year,
                                runtime_minutes, rating, vote_count, poster_url, backdrop_url,
                                cast_members, provenance)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'tmdb')
            ON CONFLICT (tmdb_id) WHERE tmdb_id IS NOT NULL DO UPDATE SET
                title = EXCLUDED.title,
                overview = EXCLUDED.overview,
                genre = EXCLUDED.genre,
                language = EXCLUDED.language,
                release_year = EXCLUDED.release_year,
                runtime_minutes = EXCLUDED.runtime_minutes,
                rating = EXCLUDED.rating,
                vote_count = EXCLUDED.vote_count,
                poster_url = EXCLUDED.poster_url,
                backdrop_url = EXCLUDED.backdrop_url,
                cast_members = EXCLUDED.cast_members,
                updated_at = now()
            RETURNING %s, (xmax = 0) AS inserted
        `, catalogColumns)

		row := tx.QueryRow(ctx, query,
			record.ExternalID, record.Name, record.Description, record.Genre, record.Language,
			record.ReleaseYear, record.RuntimeMinutes, record.Rating, record.VoteCount,
			record.PosterURL, record.BackdropURL, castJSON)
		stored, err = scanRecordWithInserted(row, &inserted)
		if err != nil {
			return domain.CatalogRecord{}, ImportWrite{}, mapWriteError(err)
		}
	} else {
		query := fmt.Sprintf(`
            INSERT INTO movies (tmdb_id, title, overview, genre, language, release_year,
                                runtime_minutes, rating, vote_count, poster_url, backdrop_url,
                                cast_members, provenance)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,'tmdb')
            ON CONFLICT (tmdb_id) WHERE tmdb_id IS NOT NULL DO NOTHING
            RETURNING %s
        `, catalogColumns)

		row := tx.QueryRow(ctx, query,
			record.ExternalID, record.Name, record.Description, record.Genre, record.Language,
			record.ReleaseYear, record.RuntimeMinutes, record.Rating, record.VoteCount,
			record.PosterURL, record.BackdropURL, castJSON)
		stored, err = scanRecord(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Existing row, overwrite off: leave curated data alone.
				return domain.CatalogRecord{}, ImportWrite{Skipped: true}, nil
			}
			return domain.CatalogRecord{}, ImportWrite{}, mapWriteError(err)
		}
		inserted = true
	}

	if inserted {
		if err := bumpStats(ctx, tx, domain.ProvenanceTMDb, 1); err != nil {
			return domain.CatalogRecord{}, ImportWrite{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.CatalogRecord{}, ImportWrite{}, err
	}
	return stored, ImportWrite{Inserted: inserted}, nil
}

// FindByExternalID fetches a record by its TMDb id.
func (r *CatalogRepository) FindByExternalID(ctx context.Context, externalID int64) (domain.CatalogRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE tmdb_id = $1`, catalogColumns)
	record, err := scanRecord(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CatalogRecord{}, ErrNotFound
		}
		return domain.CatalogRecord{}, err
	}
	return record, nil
}

// GetByID fetches a record by its internal identifier.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (domain.CatalogRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, catalogColumns)
	record, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CatalogRecord{}, ErrNotFound
		}
		return domain.CatalogRecord{}, err
	}
	return record, nil
}

// List returns catalog records that match the provided filters.
func (r *CatalogRepository) List(ctx context.Context, filters ListFilters) (ListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	} else if filters.Limit > 100 {
		filters.Limit = 100
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Query != nil && strings.TrimSpace(*filters.Query) != "" {
		q := "%" + strings.TrimSpace(*filters.Query) + "%"
		where = append(where, fmt.Sprintf("title ILIKE %s", arg(q)))
	}
	if filters.Genre != nil && strings.TrimSpace(*filters.Genre) != "" {
		g := "%" + strings.TrimSpace(*filters.Genre) + "%"
		where = append(where, fmt.Sprintf("genre ILIKE %s", arg(g)))
	}
	if filters.Year != nil {
		where = append(where, fmt.Sprintf("release_year = %s", arg(*filters.Year)))
	}
	if filters.Provenance != nil {
		where = append(where, fmt.Sprintf("provenance = %s", arg(string(*filters.Provenance))))
	}
	if filters.Cursor != nil {
		cursorCreated := arg(filters.Cursor.CreatedAt)
		cursorID := arg(filters.Cursor.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < (%s, %s::uuid)", cursorCreated, cursorID))
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(catalogColumns)
	queryBuilder.WriteString(" FROM movies")
	if len(where) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(where, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d", filters.Limit))

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.CatalogRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, err
	}

	var nextCursor *string
	if len(items) == filters.Limit {
		last := items[len(items)-1]
		token, err := encodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return ListResult{}, err
		}
		nextCursor = &token
	}

	return ListResult{Items: items, NextCursor: nextCursor}, nil
}

// CountByProvenance tallies records per origin.
func (r *CatalogRepository) CountByProvenance(ctx context.Context) (map[domain.Provenance]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT provenance, COUNT(*) FROM movies GROUP BY provenance`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Provenance]int64)
	for rows.Next() {
		var provenance string
		var count int64
		if err := rows.Scan(&provenance, &count); err != nil {
			return nil, err
		}
		counts[domain.Provenance(provenance)] = count
	}
	return counts, rows.Err()
}

// DeleteByProvenance removes every record of the given origin and resets
// the stats counters in the same transaction. Returns the removed count.
func (r *CatalogRepository) DeleteByProvenance(ctx context.Context, provenance domain.Provenance) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM movies WHERE provenance = $1`, string(provenance))
	if err != nil {
		return 0, err
	}
	removed := tag.RowsAffected()

	if err := bumpStats(ctx, tx, provenance, -removed); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return removed, nil
}

// UpdateDescription edits the curated description of a record. This is the
// manual-authoring path and intentionally bypasses the import upsert.
func (r *CatalogRepository) UpdateDescription(ctx context.Context, id, description string) (domain.CatalogRecord, error) {
	query := fmt.Sprintf(`
        UPDATE movies SET overview = $2, updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, catalogColumns)
	record, err := scanRecord(r.pool.QueryRow(ctx, query, id, description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CatalogRecord{}, ErrNotFound
		}
		return domain.CatalogRecord{}, err
	}
	return record, nil
}

// SetReviewAggregate writes the review counters owned by the review
// subsystem; the import pipeline must never touch these columns.
func (r *CatalogRepository) SetReviewAggregate(ctx context.Context, id string, average float64, count int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE movies SET review_average = $2, review_count = $3 WHERE id = $1`,
		id, average, count)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func bumpStats(ctx context.Context, tx pgx.Tx, provenance domain.Provenance, delta int64) error {
	column := "manual_movies"
	if provenance == domain.ProvenanceTMDb {
		column = "tmdb_movies"
	}
	query := fmt.Sprintf(`
        UPDATE catalog_stats
        SET total_movies = total_movies + $1,
            %s = %s + $1,
            updated_at = now()
    `, column, column)
	_, err := tx.Exec(ctx, query, delta)
	return err
}

func scanRecord(row pgx.Row) (domain.CatalogRecord, error) {
	return scanRecordFields(row, nil)
}

func scanRecordWithInserted(row pgx.Row, inserted *bool) (domain.CatalogRecord, error) {
	return scanRecordFields(row, inserted)
}

func scanRecordFields(row pgx.Row, inserted *bool) (domain.CatalogRecord, error) {
	var (
		record   domain.CatalogRecord
		castJSON []byte
	)

	dest := []interface{}{
		&record.ID,
		&record.ExternalID,
		&record.Name,
		&record.Description,
		&record.Genre,
		&record.Language,
		&record.ReleaseYear,
		&record.RuntimeMinutes,
		&record.Rating,
		&record.VoteCount,
		&record.PosterURL,
		&record.BackdropURL,
		&castJSON,
		&record.Provenance,
		&record.ReviewAverage,
		&record.ReviewCount,
		&record.WatchCount,
		&record.CreatedAt,
		&record.UpdatedAt,
	}
	if inserted != nil {
		dest = append(dest, inserted)
	}

	if err := row.Scan(dest...); err != nil {
		return domain.CatalogRecord{}, err
	}

	if len(castJSON) > 0 {
		if err := json.Unmarshal(castJSON, &record.Cast); err != nil {
			return domain.CatalogRecord{}, fmt.Errorf("unmarshal cast: %w", err)
		}
	}
	return record, nil
}

func castOrEmpty(cast []domain.CastMember) []domain.CastMember {
	if cast == nil {
		return []domain.CastMember{}
	}
	return cast
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

func encodeCursor(c Cursor) (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeCursor parses a cursor token into a Cursor.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor payload: %w", err)
	}
	return &cursor, nil
}
