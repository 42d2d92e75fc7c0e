// Package save persists player progress: level, position and language
// track. Records live in a JSON file, Redis or PostgreSQL.
package save

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("save not found")

// Record is one saved game. CoordX and CoordY of zero mean "start at the
// level's spawn point".
type Record struct {
	ID            uuid.UUID `json:"id"`
	UserName      string    `json:"user"`
	LanguageTrack string    `json:"language"`
	ResourceURL   string    `json:"url"`
	Level         int       `json:"level"`
	CoordX        int       `json:"coordX"`
	CoordY        int       `json:"coordY"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewRecord creates a level 1 record for a new game.
func NewRecord(user, track string) Record {
	return Record{
		ID:            uuid.New(),
		UserName:      user,
		LanguageTrack: track,
		ResourceURL:   strings.ToLower(track) + ".json",
		Level:         1,
		Timestamp:     time.Now().UTC(),
	}
}

// Store reads and writes records. Failures are returned to the caller
// and never retried.
type Store interface {
	// Create adds a new record.
	Create(ctx context.Context, r Record) error
	// Save overwrites an existing record, or returns ErrNotFound.
	Save(ctx context.Context, r Record) error
	// Load returns the record with the given id, or ErrNotFound.
	Load(ctx context.Context, id uuid.UUID) (Record, error)
	// List returns every record, most recent first.
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// Latest returns the most recently written record.
func Latest(ctx context.Context, s Store) (Record, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	return records[0], nil
}

func sortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}
