package importer

import (
	"context"
	"errors"
	"log"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
	"github.com/Duzcc/Netflixfake-sub000/internal/repository"
)

// CatalogStore is the storage surface the import pipeline writes through.
// No other code path writes external-id-keyed records.
type CatalogStore interface {
	UpsertImported(ctx context.Context, record domain.CatalogRecord, overwrite bool) (domain.CatalogRecord, repository.ImportWrite, error)
}

// Upserter decides insert/update/skip for one normalized record, keyed by
// its external id. The atomicity of the decision lives in the storage
// layer's conditional write; the upserter maps results to outcomes and
// absorbs the rare conflict race.
type Upserter struct {
	store  CatalogStore
	logger *log.Logger
}

// NewUpserter constructs an Upserter over the given store.
func NewUpserter(store CatalogStore, logger *log.Logger) *Upserter {
	if logger == nil {
		logger = log.Default()
	}
	return &Upserter{store: store, logger: logger}
}

// Upsert writes one record. With overwrite off an existing record wins and
// the outcome is skipped_duplicate. A storage conflict means another
// worker just resolved the same id, so it is retried immediately once.
func (u *Upserter) Upsert(ctx context.Context, record domain.CatalogRecord, overwrite bool) (Outcome, error) {
	if record.ExternalID == nil {
		return Outcome{}, errors.New("importer: record without external id")
	}
	id := *record.ExternalID

	_, write, err := u.store.UpsertImported(ctx, record, overwrite)
	if errors.Is(err, repository.ErrConflict) {
		u.logger.Printf("importer: upsert conflict on %d, retrying once", id)
		_, write, err = u.store.UpsertImported(ctx, record, overwrite)
	}
	if err != nil {
		return Outcome{}, err
	}

	switch {
	case write.Skipped:
		return Outcome{ExternalID: id, Status: StatusSkippedDuplicate}, nil
	case write.Inserted:
		return Outcome{ExternalID: id, Status: StatusCreated}, nil
	default:
		return Outcome{ExternalID: id, Status: StatusUpdated}, nil
	}
}
