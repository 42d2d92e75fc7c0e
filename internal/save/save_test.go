package save

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func record(user string, level int, at time.Time) Record {
	r := NewRecord(user, "Python")
	r.Level = level
	r.Timestamp = at
	return r
}

func assertSameRecord(t *testing.T, want, got Record) {
	t.Helper()
	assert.True(t, want.Timestamp.Equal(got.Timestamp), "timestamp %v != %v", want.Timestamp, got.Timestamp)
	want.Timestamp, got.Timestamp = time.Time{}, time.Time{}
	assert.Equal(t, want, got)
}

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	older := record("ana", 1, base)
	newer := record("luis", 2, base.Add(time.Hour))
	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, newer))

	got, err := s.Load(ctx, older.ID)
	require.NoError(t, err)
	assertSameRecord(t, older, got)

	older.Level = 3
	older.CoordX, older.CoordY = -120, 48
	older.Timestamp = base.Add(2 * time.Hour)
	require.NoError(t, s.Save(ctx, older))

	got, err = s.Load(ctx, older.ID)
	require.NoError(t, err)
	assertSameRecord(t, older, got)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID, "latest write should come first")
	assert.Equal(t, newer.ID, list[1].ID)

	latest, err := Latest(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, older.ID, latest.ID)

	_, err = s.Load(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Save(ctx, record("ghost", 1, base))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Create(ctx, newer), "duplicate create should fail")
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("ana", "Python")
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, 1, r.Level)
	assert.Equal(t, "python.json", r.ResourceURL)
	assert.Zero(t, r.CoordX)
	assert.Zero(t, r.CoordY)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "saves.json"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.json")
	ctx := context.Background()

	s, err := NewFileStore(path)
	require.NoError(t, err)
	r := record("ana", 2, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, s.Create(ctx, r))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Load(ctx, r.ID)
	require.NoError(t, err)
	assertSameRecord(t, r, got)
}

func TestFileStoreEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = Latest(context.Background(), s)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = s.List(context.Background())
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), quietLogger())
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	assert.True(t, mr.Exists(redisIndexKey))
}

func TestRedisStoreSkipsDanglingIndex(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	s, err := NewRedisStore(ctx, "redis://"+mr.Addr(), quietLogger())
	require.NoError(t, err)
	defer s.Close()

	r := NewRecord("ana", "Python")
	require.NoError(t, s.Create(ctx, r))
	mr.Del(redisKey(r.ID))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisStore(context.Background(), "redis://"+addr, quietLogger())
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.ExecContext(ctx, "DELETE FROM saves")
	require.NoError(t, err)

	exerciseStore(t, s)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "floppy"}, quietLogger())
	assert.Error(t, err)
}

func TestOpenDefaultsToFile(t *testing.T) {
	s, err := Open(context.Background(), Options{File: filepath.Join(t.TempDir(), "s.json")}, quietLogger())
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &FileStore{}, s)
}
