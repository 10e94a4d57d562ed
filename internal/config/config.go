package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	AppName    = "chase-light"
	AppVersion = "1.0.0"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	// Release source
	GitHubToken   string
	GitHubAPIBase string

	// Pipeline
	PollInterval     time.Duration
	FetchConcurrency int
	ReleaseLimit     int

	// Analyze worker
	AnalyzeConcurrency int
	AnalyzeBatchSize   int
	QueueMaxReceive    int
	VisibilityTimeout  time.Duration

	// Summarizer
	AIProvider string
	AIAPIKey   string
	AIBaseURL  string
	AIModel    string
	AILanguage string
	AIRateQPS  int
}

func Load() Config {
	return Config{
		Addr:     envString("CHASE_ADDR", ":8080"),
		DBPath:   filepath.Clean(envString("CHASE_DB_PATH", "./data/chase.db")),
		LogLevel: envString("CHASE_LOG_LEVEL", "info"),

		GitHubToken:   os.Getenv("CHASE_GITHUB_TOKEN"),
		GitHubAPIBase: envString("CHASE_GITHUB_API_BASE", "https://api.github.com"),

		PollInterval:     envDuration("CHASE_POLL_INTERVAL", 30*time.Minute),
		FetchConcurrency: envInt("CHASE_FETCH_CONCURRENCY", 3),
		ReleaseLimit:     envInt("CHASE_RELEASE_LIMIT", 20),

		AnalyzeConcurrency: envInt("CHASE_ANALYZE_CONCURRENCY", 3),
		AnalyzeBatchSize:   envInt("CHASE_ANALYZE_BATCH_SIZE", 10),
		QueueMaxReceive:    envInt("CHASE_QUEUE_MAX_RECEIVE", 5),
		VisibilityTimeout:  envDuration("CHASE_QUEUE_VISIBILITY_TIMEOUT", 300*time.Second),

		AIProvider: envString("CHASE_AI_PROVIDER", "openai"),
		AIAPIKey:   os.Getenv("CHASE_AI_API_KEY"),
		AIBaseURL:  os.Getenv("CHASE_AI_BASE_URL"),
		AIModel:    os.Getenv("CHASE_AI_MODEL"),
		AILanguage: envString("CHASE_AI_LANGUAGE", "ja-JP"),
		AIRateQPS:  envInt("CHASE_AI_RATE_QPS", 10),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
