package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// StartURL is the root places-to-go listing.
	StartURL string `envconfig:"START_URL" default:"https://www.united.com/en/us/hemispheres/places-to-go/index.html"`

	// CheckpointFile holds resume state; OutputFile is the final export.
	CheckpointFile string `envconfig:"CHECKPOINT_FILE" default:"checkpoint.json"`
	OutputFile     string `envconfig:"OUTPUT_FILE" default:"places_to_go.json"`

	// DatabaseURL enables the optional Postgres mirror when set.
	DatabaseURL string `envconfig:"DB_URL"`

	// Backend selects how pages are loaded: "browser" (headless
	// Chrome, supports See-more expansion) or "static" (plain HTTP).
	Backend  string `envconfig:"BACKEND" default:"browser"`
	Headless bool   `envconfig:"HEADLESS" default:"true"`

	UserAgent string `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"`

	// NavTimeout bounds page navigation; SelectorTimeout bounds waits
	// for the article content marker.
	NavTimeout      time.Duration `envconfig:"NAV_TIMEOUT" default:"120s"`
	SelectorTimeout time.Duration `envconfig:"SELECTOR_TIMEOUT" default:"30s"`

	// MaxLoadMore caps See-more expansion clicks per region page.
	MaxLoadMore int `envconfig:"MAX_LOAD_MORE" default:"25"`

	// RateLimit is the per-host request interval floor.
	RateLimit time.Duration `envconfig:"RATE_LIMIT" default:"2s"`

	// NoDelay disables the escalating inter-request delay schedule.
	NoDelay bool `envconfig:"NO_DELAY" default:"false"`

	// BlockedSegments override the default non-article path markers.
	BlockedSegments []string `envconfig:"BLOCKED_SEGMENTS"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// Try to load .env first; in production the vars are injected
	// directly and the file is usually absent.
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
