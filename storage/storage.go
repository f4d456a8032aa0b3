package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned when a requested object does not exist in the
// store.
var ErrNotFound = errors.New("object not found")

// Store reads raw scraped company text. The scraper (an external
// collaborator) writes objects keyed by company and source page; the
// ingest path only reads them.
type Store interface {
	// Read opens the object at key. Returns ErrNotFound if the object is
	// absent.
	Read(ctx context.Context, key string) (io.ReadCloser, error)
}

// StoreType represents the storage backend type
type StoreType string

const (
	StoreTypeLocal StoreType = "local"
	StoreTypeS3    StoreType = "s3"
)

// Config holds configuration for the raw text store
type Config struct {
	Type         StoreType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStore creates a store instance based on configuration
func NewStore(cfg Config) (Store, error) {
	switch cfg.Type {
	case StoreTypeLocal:
		return NewLocalStore(cfg.LocalPath)
	case StoreTypeS3:
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
