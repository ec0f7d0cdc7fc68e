// Package storage persists crawl progress and results. The JSON
// checkpoint is the single source of truth for resumability; the
// Postgres sink is an optional mirror.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"places-crawler/pkg/models"
)

// Checkpoint is the in-memory resume state: which article URLs are
// done, and the aggregate built so far. Both halves are persisted
// together after every successful article, so a processed mark always
// has its record in the aggregate.
type Checkpoint struct {
	Processed *models.URLSet
	Countries []models.CountryEntry
}

func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		Processed: models.NewURLSet(),
		Countries: []models.CountryEntry{},
	}
}

// checkpointFile is the on-disk shape. It round-trips exactly; the
// processed list is kept sorted so no-op saves produce identical files.
type checkpointFile struct {
	ProcessedURLs []string              `json:"processed_urls"`
	CountriesData []models.CountryEntry `json:"countries_data"`
}

// FileStore reads and writes the checkpoint at a fixed path.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the persisted checkpoint, or empty defaults when the
// file is absent or unreadable. It never fails the caller: a fresh
// crawl is always a valid fallback.
func (s *FileStore) Load() *Checkpoint {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warnf("checkpoint %s unreadable, starting fresh", s.path)
		}
		return NewCheckpoint()
	}
	var file checkpointFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.WithError(err).Warnf("checkpoint %s corrupt, starting fresh", s.path)
		return NewCheckpoint()
	}
	cp := &Checkpoint{
		Processed: models.NewURLSet(file.ProcessedURLs...),
		Countries: file.CountriesData,
	}
	if cp.Countries == nil {
		cp.Countries = []models.CountryEntry{}
	}
	return cp
}

// Save atomically replaces the checkpoint with the full current state:
// write to a temp file in the same directory, then rename over the
// target, so a reader never observes a torn file.
func (s *FileStore) Save(cp *Checkpoint) error {
	file := checkpointFile{
		ProcessedURLs: cp.Processed.Values(),
		CountriesData: cp.Countries,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	return writeAtomic(s.path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
