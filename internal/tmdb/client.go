package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client defines the contract for querying the upstream metadata API.
// Paged operations report whether more pages exist; they know nothing
// about caller-side limits.
type Client interface {
	MovieByID(ctx context.Context, id int64) (Title, error)
	DiscoverByGenre(ctx context.Context, genreID int64, page int) ([]Title, bool, error)
	Popular(ctx context.Context, page int) ([]Title, bool, error)
	TopRated(ctx context.Context, page int) ([]Title, bool, error)
}

// HTTPClient implements Client over HTTP with client-side request pacing
// so bulk imports stay under the upstream rate limit.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed metadata client. ratePerSec
// bounds outgoing requests per second.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, ratePerSec int, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	if ratePerSec <= 0 {
		ratePerSec = 4
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// MovieByID fetches full details plus credits for one title.
func (c *HTTPClient) MovieByID(ctx context.Context, id int64) (Title, error) {
	var payload movieResponse
	path := fmt.Sprintf("/3/movie/%d", id)
	err := c.get(ctx, path, url.Values{"append_to_response": {"credits"}}, &payload)
	if err != nil {
		var fatal *FatalError
		if errors.As(err, &fatal) && fatal.Status == http.StatusNotFound {
			return Title{}, &NotFoundError{ID: id}
		}
		return Title{}, err
	}
	return payload.toTitle(), nil
}

// DiscoverByGenre fetches one page of titles for a genre.
func (c *HTTPClient) DiscoverByGenre(ctx context.Context, genreID int64, page int) ([]Title, bool, error) {
	return c.page(ctx, "/3/discover/movie", url.Values{
		"with_genres": {strconv.FormatInt(genreID, 10)},
		"page":        {strconv.Itoa(page)},
	})
}

// Popular fetches one page of the popular listing.
func (c *HTTPClient) Popular(ctx context.Context, page int) ([]Title, bool, error) {
	return c.page(ctx, "/3/movie/popular", url.Values{"page": {strconv.Itoa(page)}})
}

// TopRated fetches one page of the top-rated listing.
func (c *HTTPClient) TopRated(ctx context.Context, page int) ([]Title, bool, error) {
	return c.page(ctx, "/3/movie/top_rated", url.Values{"page": {strconv.Itoa(page)}})
}

func (c *HTTPClient) page(ctx context.Context, path string, query url.Values) ([]Title, bool, error) {
	var payload pageResponse
	if err := c.get(ctx, path, query, &payload); err != nil {
		return nil, false, err
	}
	titles := make([]Title, 0, len(payload.Results))
	for _, r := range payload.Results {
		titles = append(titles, r.toTitle())
	}
	return titles, payload.Page < payload.TotalPages, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, dst interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransientError{Err: err}
	}

	rel := &url.URL{Path: path}
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	rel.RawQuery = query.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return &FatalError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return &FatalError{Err: fmt.Errorf("decode %s: %w", path, err)}
		}
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		c.logger.Printf("tmdb: upstream %d for %s", resp.StatusCode, path)
		return &TransientError{Status: resp.StatusCode}
	default:
		return &FatalError{Status: resp.StatusCode}
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

type movieResponse struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	Runtime          int     `json:"runtime"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	Genres           []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	GenreIDs []int64 `json:"genre_ids"`
	Credits  struct {
		Cast []CastCredit `json:"cast"`
	} `json:"credits"`
}

type pageResponse struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Results    []movieResponse `json:"results"`
}

func (m movieResponse) toTitle() Title {
	genreIDs := m.GenreIDs
	if len(genreIDs) == 0 && len(m.Genres) > 0 {
		genreIDs = make([]int64, 0, len(m.Genres))
		for _, g := range m.Genres {
			genreIDs = append(genreIDs, g.ID)
		}
	}
	return Title{
		ID:               m.ID,
		Name:             m.Title,
		Overview:         m.Overview,
		OriginalLanguage: m.OriginalLanguage,
		ReleaseDate:      m.ReleaseDate,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		RuntimeMinutes:   m.Runtime,
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		GenreIDs:         genreIDs,
		Cast:             m.Credits.Cast,
	}
}
