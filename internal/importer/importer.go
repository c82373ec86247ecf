package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Duzcc/Netflixfake-sub000/internal/tmdb"
)

// Discovery never pages past this bound, matching the upstream API's own
// pagination ceiling.
const maxDiscoveryPages = 500

// Options tunes a single Importer instance.
type Options struct {
	Concurrency int
	MaxBatch    int
	RunTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 5
	}
	if o.MaxBatch <= 0 {
		o.MaxBatch = 50
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = 5 * time.Minute
	}
	return o
}

// Importer drives one import request through discovery, a bounded fan-out
// of fetch/normalize/upsert workers, and summarization. A failing title
// never aborts the batch.
type Importer struct {
	client   tmdb.Client
	mapper   *tmdb.Mapper
	upserter *Upserter
	opts     Options
	logger   *log.Logger
}

// New constructs an Importer.
func New(client tmdb.Client, mapper *tmdb.Mapper, upserter *Upserter, opts Options, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{
		client:   client,
		mapper:   mapper,
		upserter: upserter,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Run executes one import request and always produces a summary for it.
// The returned error is non-nil only for request-level failures (invalid
// payload, discovery failure) that stop the run before importing begins.
func (imp *Importer) Run(ctx context.Context, req Request) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()

	if err := req.validate(imp.opts.MaxBatch, imp.mapper.GenreLabels); err != nil {
		return Summary{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, imp.opts.RunTimeout)
	defer cancel()

	ids, err := imp.discover(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return summarize(runID, req.Mode, nil, time.Since(start), true), nil
		}
		return Summary{}, fmt.Errorf("discovery failed: %w", err)
	}

	imp.logger.Printf("importer: run %s (%s) importing %d titles (overwrite=%v)", runID, req.Mode, len(ids), req.Overwrite)

	outcomes := make([]Outcome, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(imp.opts.Concurrency)

	dispatched := 0
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		i, id := i, id
		dispatched++
		g.Go(func() error {
			outcomes[i] = imp.importOne(ctx, id, req.Overwrite)
			return nil
		})
	}
	_ = g.Wait()

	// Titles never dispatched because the run ended early.
	for i := dispatched; i < len(ids); i++ {
		outcomes[i] = failedOutcome(ids[i], ctx.Err())
	}

	cancelled := errors.Is(ctx.Err(), context.Canceled)
	summary := summarize(runID, req.Mode, outcomes, time.Since(start), cancelled)
	imp.logger.Printf("importer: run %s done in %s: created=%d updated=%d skipped=%d failed=%d",
		runID, summary.Duration.Round(time.Millisecond), summary.Created, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

// discover resolves the request into a concrete, de-duplicated id list.
func (imp *Importer) discover(ctx context.Context, req Request) ([]int64, error) {
	if req.Mode == ModeByIDs {
		return dedupeIDs(req.IDs), nil
	}

	fetch := func(page int) ([]tmdb.Title, bool, error) {
		switch req.Mode {
		case ModeByGenre:
			return imp.client.DiscoverByGenre(ctx, req.GenreID, page)
		case ModePopular:
			return imp.client.Popular(ctx, page)
		default:
			return imp.client.TopRated(ctx, page)
		}
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0, req.Limit)
	for page := 1; page <= maxDiscoveryPages; page++ {
		titles, hasMore, err := fetch(page)
		if err != nil {
			return nil, err
		}
		for _, title := range titles {
			if title.VoteAverage < req.MinRating || title.VoteCount < req.MinVoteCount {
				continue
			}
			// The same title can show up on multiple pages while
			// upstream re-ranks its listings.
			if _, dup := seen[title.ID]; dup {
				continue
			}
			seen[title.ID] = struct{}{}
			ids = append(ids, title.ID)
			if len(ids) == req.Limit {
				return ids, nil
			}
		}
		if !hasMore {
			break
		}
	}
	return ids, nil
}

// importOne runs the fetch, normalize, upsert sequence for one title. All
// errors fold into the outcome; nothing escapes the worker.
func (imp *Importer) importOne(ctx context.Context, id int64, overwrite bool) Outcome {
	title, err := imp.fetchWithRetry(ctx, id)
	if err != nil {
		return failedOutcome(id, err)
	}

	record, err := imp.mapper.Normalize(title)
	if err != nil {
		return failedOutcome(id, err)
	}

	outcome, err := imp.upserter.Upsert(ctx, record, overwrite)
	if err != nil {
		imp.logger.Printf("importer: upsert %d failed: %v", id, err)
		return failedOutcome(id, err)
	}
	return outcome
}

// fetchWithRetry retries rate-limited fetches up to twice, honoring any
// Retry-After hint, and transient failures once. Not-found and malformed
// responses are never retried.
func (imp *Importer) fetchWithRetry(ctx context.Context, id int64) (tmdb.Title, error) {
	var (
		rateRetries      = 0
		transientRetries = 0
	)
	for {
		title, err := imp.client.MovieByID(ctx, id)
		if err == nil {
			return title, nil
		}

		var rateLimited *tmdb.RateLimitedError
		var transient *tmdb.TransientError
		switch {
		case errors.As(err, &rateLimited) && rateRetries < 2:
			rateRetries++
			wait := rateLimited.RetryAfter
			if wait <= 0 {
				wait = time.Duration(rateRetries) * 500 * time.Millisecond
			}
			if sleepErr := sleepCtx(ctx, wait); sleepErr != nil {
				return tmdb.Title{}, sleepErr
			}
		case errors.As(err, &transient) && transientRetries < 1:
			transientRetries++
			if sleepErr := sleepCtx(ctx, 250*time.Millisecond); sleepErr != nil {
				return tmdb.Title{}, sleepErr
			}
		default:
			return tmdb.Title{}, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func failedOutcome(id int64, err error) Outcome {
	reason := "unknown failure"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "run timed out"
	case errors.Is(err, context.Canceled):
		reason = "run cancelled"
	case err != nil:
		reason = err.Error()
	}
	return Outcome{ExternalID: id, Status: StatusFailed, Reason: reason}
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
