package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chat-harvester/internal/application/port/output"
)

var ErrUnknownBackend = errors.New("unknown store backend")

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Backend string `mapstructure:"backend"`
	// Path is the JSON file for the file backend and the database file for sqlite.
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis_url"`
}

func DefaultConfig() Config {
	return Config{
		Backend:  BackendFile,
		Path:     "qa_results.json",
		RedisURL: "redis://localhost:6379/0",
	}
}

// Open returns the result store selected by cfg.Backend.
func Open(ctx context.Context, cfg Config) (output.ResultStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		return NewFileStore(cfg.Path), nil
	case BackendRedis:
		return NewRedisStoreFromURL(ctx, cfg.RedisURL)
	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
