package importer

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
	"github.com/Duzcc/Netflixfake-sub000/internal/repository"
)

func testRecord(id int64) domain.CatalogRecord {
	return domain.CatalogRecord{
		ExternalID:  &id,
		Name:        "Upsert Me",
		ReleaseYear: 2020,
		Provenance:  domain.ProvenanceTMDb,
	}
}

func TestUpsertOutcomes(t *testing.T) {
	store := newFakeStore()
	upserter := NewUpserter(store, log.New(io.Discard, "", 0))
	ctx := context.Background()

	outcome, err := upserter.Upsert(ctx, testRecord(1), false)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if outcome.Status != StatusCreated {
		t.Fatalf("status = %s, want %s", outcome.Status, StatusCreated)
	}

	outcome, err = upserter.Upsert(ctx, testRecord(1), false)
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if outcome.Status != StatusSkippedDuplicate {
		t.Fatalf("status = %s, want %s", outcome.Status, StatusSkippedDuplicate)
	}

	outcome, err = upserter.Upsert(ctx, testRecord(1), true)
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if outcome.Status != StatusUpdated {
		t.Fatalf("status = %s, want %s", outcome.Status, StatusUpdated)
	}
}

func TestUpsertRetriesConflictOnce(t *testing.T) {
	store := newFakeStore()
	store.conflicts = 1
	upserter := NewUpserter(store, log.New(io.Discard, "", 0))

	outcome, err := upserter.Upsert(context.Background(), testRecord(2), false)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if outcome.Status != StatusCreated {
		t.Fatalf("status = %s, want %s after conflict retry", outcome.Status, StatusCreated)
	}
}

func TestUpsertConflictTwiceFails(t *testing.T) {
	store := newFakeStore()
	store.conflicts = 2
	upserter := NewUpserter(store, log.New(io.Discard, "", 0))

	_, err := upserter.Upsert(context.Background(), testRecord(3), false)
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUpsertRejectsMissingExternalID(t *testing.T) {
	upserter := NewUpserter(newFakeStore(), log.New(io.Discard, "", 0))

	_, err := upserter.Upsert(context.Background(), domain.CatalogRecord{Name: "orphan"}, false)
	if err == nil {
		t.Fatal("expected error for record without external id")
	}
}
