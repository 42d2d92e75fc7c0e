package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore keeps every record in a single JSON array file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path, creating its directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create saves directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Create appends a new record.
func (s *FileStore) Create(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.ID == r.ID {
			return fmt.Errorf("save %s already exists", r.ID)
		}
	}
	return s.write(append(records, r))
}

// Save replaces the record with the same id.
func (s *FileStore) Save(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == r.ID {
			records[i] = r
			return s.write(records)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
}

// Load returns the record with the given id.
func (s *FileStore) Load(_ context.Context, id uuid.UUID) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns every record, most recent first.
func (s *FileStore) List(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(records)
	return records, nil
}

// Close is a no-op; the file is only open during calls.
func (s *FileStore) Close() error {
	return nil
}

// read returns the stored records. A missing or empty file holds none.
func (s *FileStore) read() ([]Record, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saves file: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saves: %w", err)
	}
	return records, nil
}

// write replaces the file through a temporary file in the same directory.
func (s *FileStore) write(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saves: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".saves-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp saves file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write saves file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write saves file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace saves file: %w", err)
	}
	return nil
}
