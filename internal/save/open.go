package save

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a store backend.
type Options struct {
	Backend     string
	File        string
	RedisURL    string
	PostgresDSN string
}

// Open creates the store named by opts.Backend.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.File)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisURL, logger)
	case BackendPostgres:
		return NewPostgresStore(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown save backend %q", opts.Backend)
	}
}
