package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
)

const pageSize = 20

type movieEntry struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	Overview         string          `json:"overview"`
	OriginalLanguage string          `json:"original_language"`
	ReleaseDate      string          `json:"release_date"`
	VoteAverage      float64         `json:"vote_average"`
	VoteCount        int64           `json:"vote_count"`
	Runtime          int             `json:"runtime"`
	PosterPath       string          `json:"poster_path"`
	BackdropPath     string          `json:"backdrop_path"`
	GenreIDs         []int64         `json:"genre_ids"`
	Popularity       float64         `json:"popularity"`
	Credits          json.RawMessage `json:"credits,omitempty"`
}

type pagePayload struct {
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	Results    []movieEntry `json:"results"`
}

func main() {
	var (
		port = flag.String("port", "9098", "port to listen on")
		data = flag.String("data", "mock-tmdb.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var movies []movieEntry
	if err := json.Unmarshal(file, &movies); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	byID := make(map[int64]movieEntry, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/3/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		sorted := sortedCopy(movies, func(a, b movieEntry) bool { return a.Popularity > b.Popularity })
		servePage(w, r, sorted)
	})
	mux.HandleFunc("/3/movie/top_rated", func(w http.ResponseWriter, r *http.Request) {
		sorted := sortedCopy(movies, func(a, b movieEntry) bool { return a.VoteAverage > b.VoteAverage })
		servePage(w, r, sorted)
	})
	mux.HandleFunc("/3/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		genreID, err := strconv.ParseInt(r.URL.Query().Get("with_genres"), 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		matched := make([]movieEntry, 0)
		for _, m := range movies {
			for _, g := range m.GenreIDs {
				if g == genreID {
					matched = append(matched, m)
					break
				}
			}
		}
		servePage(w, r, matched)
	})
	mux.HandleFunc("/3/movie/", func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.URL.Path, "/3/movie/")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		entry, ok := byID[id]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s (%d titles)", addr, len(movies))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func sortedCopy(movies []movieEntry, less func(a, b movieEntry) bool) []movieEntry {
	out := make([]movieEntry, len(movies))
	copy(out, movies)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func servePage(w http.ResponseWriter, r *http.Request, movies []movieEntry) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		page = parsed
	}

	totalPages := (len(movies) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(movies) {
		start = len(movies)
	}
	if end > len(movies) {
		end = len(movies)
	}

	payload := pagePayload{
		Page:       page,
		TotalPages: totalPages,
		Results:    movies[start:end],
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
