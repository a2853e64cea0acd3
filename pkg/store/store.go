// Package store persists serialized form definitions in flat key-value
// storage. Backends hold opaque strings; Load and Save apply the definition
// serialization on top.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultKey is the key the definition is stored under unless configured.
const DefaultKey = "formBuilder"

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

var (
	// ErrEmptyKey is returned for blank keys.
	ErrEmptyKey = errors.New("store: key cannot be empty")
	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("store: closed")
	// ErrUnknownDriver is returned by Open for unsupported drivers.
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// Store is the key-value contract. Get reports absence with ok=false and a
// nil error; Remove of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver string
	// Path is the directory of the file backend or the database file of the
	// sqlite backend.
	Path string
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverMemory:
		return NewMemory(), nil
	case "", DriverFile:
		return NewFile(cfg.Path)
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.Path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
