package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Duzcc/Netflixfake-sub000/internal/domain"
	"github.com/Duzcc/Netflixfake-sub000/internal/importer"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type importByIDsRequest struct {
	ExternalIDs []int64 `json:"externalIds"`
	Overwrite   bool    `json:"overwrite"`
}

type importCategoryRequest struct {
	GenreID      int64   `json:"genreId"`
	Limit        int     `json:"limit"`
	MinRating    float64 `json:"minRating"`
	MinVoteCount int64   `json:"minVoteCount"`
	Overwrite    bool    `json:"overwrite"`
}

type importListingRequest struct {
	Limit        int     `json:"limit"`
	MinRating    float64 `json:"minRating"`
	MinVoteCount int64   `json:"minVoteCount"`
	Overwrite    bool    `json:"overwrite"`
}

type importRunResponse struct {
	importer.Summary
	DurationMs int64 `json:"durationMs"`
}

type importStatsResponse struct {
	TotalMovies    int64   `json:"totalMovies"`
	TMDbMovies     int64   `json:"tmdbMovies"`
	ManualMovies   int64   `json:"manualMovies"`
	TMDbPercentage float64 `json:"tmdbPercentage"`
}

type purgeResponse struct {
	Removed int64 `json:"removed"`
}

func (s *Server) handleImportByIDs(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req importByIDsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	s.runImport(w, r, importer.ByIDs(req.ExternalIDs, req.Overwrite))
}

func (s *Server) handleImportCategory(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req importCategoryRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	s.runImport(w, r, importer.ByGenre(req.GenreID, req.Limit, req.MinRating, req.MinVoteCount, req.Overwrite))
}

func (s *Server) handleImportPopular(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req importListingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	s.runImport(w, r, importer.Popular(req.Limit, req.MinRating, req.MinVoteCount, req.Overwrite))
}

func (s *Server) handleImportTopRated(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req importListingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	s.runImport(w, r, importer.TopRated(req.Limit, req.MinRating, req.Overwrite))
}

func (s *Server) runImport(w http.ResponseWriter, r *http.Request, req importer.Request) {
	summary, err := s.importer.Run(r.Context(), req)
	if err != nil {
		var reqErr *importer.RequestError
		if errors.As(err, &reqErr) {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", reqErr.Reason)
			return
		}
		s.logger.Printf("import run failed: %v", err)
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Import could not reach the metadata service")
		return
	}

	s.respondJSON(w, http.StatusOK, importRunResponse{
		Summary:    summary,
		DurationMs: summary.Duration.Milliseconds(),
	})
}

func (s *Server) handleImportStats(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	stats, err := s.repo.Stats.Get(r.Context())
	if err != nil {
		s.logger.Printf("fetch import stats failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch import stats")
		return
	}

	s.respondJSON(w, http.StatusOK, importStatsResponse{
		TotalMovies:    stats.TotalMovies,
		TMDbMovies:     stats.TMDbMovies,
		ManualMovies:   stats.ManualMovies,
		TMDbPercentage: stats.TMDbPercentage(),
	})
}

func (s *Server) handlePurgeImported(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	removed, err := s.repo.Catalog.DeleteByProvenance(r.Context(), domain.ProvenanceTMDb)
	if err != nil {
		s.logger.Printf("purge imported records failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove imported records")
		return
	}

	s.logger.Printf("purged %d imported records", removed)
	s.respondJSON(w, http.StatusOK, purgeResponse{Removed: removed})
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token == s.cfg.AuthToken
}
