package httpserver

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
	"github.com/Duzcc/Netflixfake-sub000/internal/repository"
)

type movieListResponse struct {
	Items      []movieResponse `json:"items"`
	NextCursor *string         `json:"nextCursor,omitempty"`
}

type movieResponse struct {
	ID             string               `json:"id"`
	TMDbID         *int64               `json:"tmdbId,omitempty"`
	Title          string               `json:"title"`
	Overview       string               `json:"overview"`
	Genre          string               `json:"genre"`
	Language       string               `json:"language"`
	ReleaseYear    int                  `json:"releaseYear"`
	RuntimeMinutes int                  `json:"runtimeMinutes"`
	Rating         float64              `json:"rating"`
	VoteCount      int64                `json:"voteCount"`
	PosterURL      *string              `json:"posterUrl,omitempty"`
	BackdropURL    *string              `json:"backdropUrl,omitempty"`
	Cast           []castMemberResponse `json:"cast"`
	Provenance     string               `json:"provenance"`
	ReviewAverage  float64              `json:"reviewAverage"`
	ReviewCount    int64                `json:"reviewCount"`
	WatchCount     int64                `json:"watchCount"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

type castMemberResponse struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	ImageURL  string `json:"imageUrl"`
	Order     int    `json:"order"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, err := buildCatalogFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Catalog.List(r.Context(), filters)
	if err != nil {
		s.logger.Printf("list movies error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list movies")
		return
	}

	items := make([]movieResponse, 0, len(result.Items))
	for _, record := range result.Items {
		items = append(items, toMovieResponse(record))
	}

	resp := movieListResponse{Items: items}
	if result.NextCursor != nil {
		resp.NextCursor = result.NextCursor
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func buildCatalogFilters(query url.Values) (repository.ListFilters, error) {
	var filters repository.ListFilters

	if q := strings.TrimSpace(query.Get("q")); q != "" {
		filters.Query = &q
	}
	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		filters.Genre = &val
	}
	if val := strings.TrimSpace(query.Get("year")); val != "" {
		year, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid year value")
		}
		filters.Year = &year
	}
	if val := strings.TrimSpace(query.Get("provenance")); val != "" {
		provenance := domain.Provenance(val)
		if provenance != domain.ProvenanceManual && provenance != domain.ProvenanceTMDb {
			return filters, fmt.Errorf("invalid provenance value")
		}
		filters.Provenance = &provenance
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, fmt.Errorf("invalid cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}

func toMovieResponse(record domain.CatalogRecord) movieResponse {
	cast := make([]castMemberResponse, 0, len(record.Cast))
	for _, member := range record.Cast {
		cast = append(cast, castMemberResponse{
			Name:      member.Name,
			Character: member.Character,
			ImageURL:  member.ImageURL,
			Order:     member.Order,
		})
	}

	return movieResponse{
		ID:             record.ID,
		TMDbID:         record.ExternalID,
		Title:          record.Name,
		Overview:       record.Description,
		Genre:          record.Genre,
		Language:       record.Language,
		ReleaseYear:    record.ReleaseYear,
		RuntimeMinutes: record.RuntimeMinutes,
		Rating:         record.Rating,
		VoteCount:      record.VoteCount,
		PosterURL:      record.PosterURL,
		BackdropURL:    record.BackdropURL,
		Cast:           cast,
		Provenance:     string(record.Provenance),
		ReviewAverage:  record.ReviewAverage,
		ReviewCount:    record.ReviewCount,
		WatchCount:     record.WatchCount,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
