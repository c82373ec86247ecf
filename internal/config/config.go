package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	AuthToken         string
	DBURL             string
	TMDbURL           string
	TMDbAPIKey        string
	TMDbImageBaseURL  string
	TMDbTimeoutSecs   int
	TMDbRatePerSec    int
	ImportConcurrency int
	ImportMaxBatch    int
	ImportTimeoutSecs int
	RefreshCron       string
	RefreshLimit      int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBStatementCache  int
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		AuthToken:         os.Getenv("AUTH_TOKEN"),
		DBURL:             os.Getenv("DB_URL"),
		TMDbURL:           getEnv("TMDB_URL", "https://api.themoviedb.org"),
		TMDbAPIKey:        os.Getenv("TMDB_API_KEY"),
		TMDbImageBaseURL:  getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
		TMDbTimeoutSecs:   getEnvInt("TMDB_TIMEOUT_SECS", 10),
		TMDbRatePerSec:    getEnvInt("TMDB_RATE_PER_SEC", 4),
		ImportConcurrency: getEnvInt("IMPORT_CONCURRENCY", 5),
		ImportMaxBatch:    getEnvInt("IMPORT_MAX_BATCH", 50),
		ImportTimeoutSecs: getEnvInt("IMPORT_RUN_TIMEOUT_SECS", 300),
		RefreshCron:       os.Getenv("IMPORT_REFRESH_CRON"),
		RefreshLimit:      getEnvInt("IMPORT_REFRESH_LIMIT", 20),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 330),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 20),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 2),
		DBMaxIdleSecs:     getEnvInt("DB_MAX_CONN_IDLE_SECS", 300),
		DBMaxLifeSecs:     getEnvInt("DB_MAX_CONN_LIFETIME_SECS", 3600),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
		DBStatementCache:  getEnvInt("DB_STATEMENT_CACHE_CAPACITY", 256),
	}

	if cfg.AuthToken == "" {
		return Config{}, fmt.Errorf("AUTH_TOKEN is required")
	}
	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.TMDbAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	if cfg.TMDbTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.TMDbRatePerSec <= 0 {
		return Config{}, fmt.Errorf("TMDB_RATE_PER_SEC must be positive")
	}
	if cfg.ImportConcurrency <= 0 {
		return Config{}, fmt.Errorf("IMPORT_CONCURRENCY must be positive")
	}
	if cfg.ImportMaxBatch <= 0 {
		return Config{}, fmt.Errorf("IMPORT_MAX_BATCH must be positive")
	}
	if cfg.ImportTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("IMPORT_RUN_TIMEOUT_SECS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}
