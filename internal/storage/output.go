package storage

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"places-crawler/pkg/models"
)

// WriteOutput writes the final consolidated countries array. Same
// shape as the checkpoint's countries_data, written once at the end
// of a run.
func WriteOutput(path string, entries []models.CountryEntry) error {
	if entries == nil {
		entries = []models.CountryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	log.WithFields(log.Fields{"file": path, "countries": len(entries)}).Info("wrote final output")
	return nil
}
