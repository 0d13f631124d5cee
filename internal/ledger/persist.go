package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

// schemaVersion is bumped when the on-disk layout changes. Files with an
// unknown version are treated as corrupt.
const schemaVersion = 1

// fileSchema is the on-disk layout. Flights are stored as an ordered list
// so insertion order survives the round-trip.
type fileSchema struct {
	SchemaVersion int          `json:"schema_version"`
	Flights       []fileRecord `json:"flights"`
}

type fileRecord struct {
	FlightID   string          `json:"flight_id"`
	Milestones map[string]bool `json:"milestones"`
}

// Store persists a ledger to a single JSON file.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the ledger from disk. A missing, unreadable, or corrupt file
// yields an empty ledger with a logged warning, never an error: losing
// dedup history means at worst a few repeated notifications.
func (s *Store) Load(highWater, lowWater int) *Ledger {
	l := New(highWater, lowWater)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("ledger: read %s failed, starting empty: %v", s.path, err)
		}
		return l
	}

	var file fileSchema
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("ledger: %s is corrupt, starting empty: %v", s.path, err)
		return l
	}
	if file.SchemaVersion != schemaVersion {
		log.Printf("ledger: %s has unknown schema version %d, starting empty", s.path, file.SchemaVersion)
		return l
	}

	for _, rec := range file.Flights {
		for m, reported := range rec.Milestones {
			if reported {
				l.MarkReported(rec.FlightID, domain.Milestone(m))
			}
		}
	}
	return l
}

// Save writes the whole ledger to disk, replacing the previous file via a
// temp file and rename. The caller logs and drops the error; a transient
// disk failure must never stop the poll loop.
func (s *Store) Save(l *Ledger) error {
	file := fileSchema{SchemaVersion: schemaVersion}
	for _, id := range l.order {
		rec := l.record(id)
		milestones := make(map[string]bool, len(rec.Milestones))
		for m, reported := range rec.Milestones {
			if reported {
				milestones[string(m)] = true
			}
		}
		file.Flights = append(file.Flights, fileRecord{
			FlightID:   id,
			Milestones: milestones,
		})
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
