package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib" // register the pgx driver

	"places-crawler/pkg/models"
)

// DestinationSink mirrors each scraped article into Postgres. The JSON
// checkpoint stays authoritative for resume; the table exists for
// downstream querying, so write failures are reported but the caller
// treats them as non-fatal.
type DestinationSink struct {
	db *sql.DB
}

func NewDestinationSink(db *sql.DB) (*DestinationSink, error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS destinations (
			article_url  TEXT PRIMARY KEY,
			region       TEXT NOT NULL,
			country      TEXT NOT NULL,
			place_name   TEXT NOT NULL,
			title        TEXT NOT NULL DEFAULT '',
			hero_image   TEXT,
			description  TEXT NOT NULL DEFAULT '',
			scraped_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, fmt.Errorf("ensure destinations table: %w", err)
	}
	return &DestinationSink{db: db}, nil
}

// Save upserts one article record. Re-scrapes of the same URL keep the
// newest fields.
func (s *DestinationSink) Save(loc models.Location, rec models.ArticleRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO destinations (article_url, region, country, place_name, title, hero_image, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (article_url) DO UPDATE SET
			title = EXCLUDED.title,
			hero_image = EXCLUDED.hero_image,
			description = EXCLUDED.description,
			scraped_at = now()`,
		rec.ArticleURL, loc.Region, loc.Country, rec.PlaceName,
		rec.ArticleTitle, rec.HeroImage, rec.Description)
	if err != nil {
		return fmt.Errorf("upsert destination %s: %w", rec.ArticleURL, err)
	}
	return nil
}
