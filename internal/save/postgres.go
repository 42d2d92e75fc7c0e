package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore keeps records in a saves table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database, checks the connection and creates
// the schema when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS saves (
		id UUID PRIMARY KEY,
		user_name TEXT NOT NULL,
		language_track TEXT NOT NULL,
		resource_url TEXT NOT NULL,
		level INTEGER NOT NULL,
		coord_x INTEGER NOT NULL,
		coord_y INTEGER NOT NULL,
		saved_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS saves_saved_at_idx ON saves (saved_at DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Create inserts a new record.
func (s *PostgresStore) Create(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saves (id, user_name, language_track, resource_url, level, coord_x, coord_y, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.UserName, r.LanguageTrack, r.ResourceURL, r.Level, r.CoordX, r.CoordY, r.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert save: %w", err)
	}
	return nil
}

// Save updates an existing record.
func (s *PostgresStore) Save(ctx context.Context, r Record) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE saves
		SET user_name = $2, language_track = $3, resource_url = $4,
			level = $5, coord_x = $6, coord_y = $7, saved_at = $8
		WHERE id = $1`,
		r.ID, r.UserName, r.LanguageTrack, r.ResourceURL, r.Level, r.CoordX, r.CoordY, r.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to update save: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update save: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}
	return nil
}

const selectColumns = `SELECT id, user_name, language_track, resource_url, level, coord_x, coord_y, saved_at FROM saves`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.UserName, &r.LanguageTrack, &r.ResourceURL, &r.Level, &r.CoordX, &r.CoordY, &r.Timestamp)
	return r, err
}

// Load returns the record with the given id.
func (s *PostgresStore) Load(ctx context.Context, id uuid.UUID) (Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to load save: %w", err)
	}
	return r, nil
}

// List returns every record, most recent first.
func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
