package importer

import "fmt"

// Mode selects how a run discovers the titles to import.
type Mode string

const (
	ModeByIDs    Mode = "by_ids"
	ModeByGenre  Mode = "category"
	ModePopular  Mode = "popular"
	ModeTopRated Mode = "top_rated"
)

// Request describes one import run. Exactly one mode applies; the listing
// modes page through upstream until Limit distinct ids pass the filters or
// upstream is exhausted.
type Request struct {
	Mode         Mode
	IDs          []int64
	GenreID      int64
	Limit        int
	MinRating    float64
	MinVoteCount int64
	Overwrite    bool
}

// ByIDs builds an explicit-id import request.
func ByIDs(ids []int64, overwrite bool) Request {
	return Request{Mode: ModeByIDs, IDs: ids, Overwrite: overwrite}
}

// ByGenre builds a genre-filtered import request.
func ByGenre(genreID int64, limit int, minRating float64, minVoteCount int64, overwrite bool) Request {
	return Request{Mode: ModeByGenre, GenreID: genreID, Limit: limit, MinRating: minRating, MinVoteCount: minVoteCount, Overwrite: overwrite}
}

// Popular builds a popular-listing import request.
func Popular(limit int, minRating float64, minVoteCount int64, overwrite bool) Request {
	return Request{Mode: ModePopular, Limit: limit, MinRating: minRating, MinVoteCount: minVoteCount, Overwrite: overwrite}
}

// TopRated builds a top-rated-listing import request.
func TopRated(limit int, minRating float64, overwrite bool) Request {
	return Request{Mode: ModeTopRated, Limit: limit, MinRating: minRating, Overwrite: overwrite}
}

// RequestError reports an invalid request. It fails the whole run before
// any upstream call is made.
type RequestError struct {
	Reason string
}

func (e *RequestError) Error() string {
	return "importer: invalid request: " + e.Reason
}

func (r *Request) validate(maxBatch int, genreLabels map[int64]string) error {
	switch r.Mode {
	case ModeByIDs:
		if len(r.IDs) == 0 {
			return &RequestError{Reason: "externalIds must not be empty"}
		}
		if len(r.IDs) > maxBatch {
			return &RequestError{Reason: fmt.Sprintf("externalIds exceeds the maximum of %d per batch", maxBatch)}
		}
		for _, id := range r.IDs {
			if id <= 0 {
				return &RequestError{Reason: fmt.Sprintf("external id %d must be positive", id)}
			}
		}
	case ModeByGenre:
		if _, ok := genreLabels[r.GenreID]; !ok {
			return &RequestError{Reason: fmt.Sprintf("unknown genre id %d", r.GenreID)}
		}
	case ModePopular, ModeTopRated:
	default:
		return &RequestError{Reason: fmt.Sprintf("unknown import mode %q", r.Mode)}
	}

	if r.Mode != ModeByIDs {
		if r.Limit <= 0 {
			r.Limit = 20
		} else if r.Limit > 100 {
			return &RequestError{Reason: "limit must not exceed 100"}
		}
		if r.MinRating < 0 || r.MinRating > 10 {
			return &RequestError{Reason: "minRating must be between 0 and 10"}
		}
		if r.MinVoteCount < 0 {
			return &RequestError{Reason: "minVoteCount must be non-negative"}
		}
	}
	return nil
}
