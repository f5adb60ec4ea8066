package backend

import (
	"context"

	"fatura/internal/kv"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store instance and optional cleanup function
type BackendResult struct {
	Store   kv.Store
	Type    BackendType
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates key-value stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for store creation
type Config struct {
	Type BackendType

	// File backend
	DataDirectory string

	// SQLite backend
	SQLiteDBPath string

	// Redis backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// S3 backend
	S3Bucket           string
	S3Region           string
	S3Prefix           string
	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	RedisBackend  BackendType = "redis"
	S3Backend     BackendType = "s3"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, RedisBackend, S3Backend:
		return true
	default:
		return false
	}
}

// Persistent reports whether data outlives the process.
func (bt BackendType) Persistent() bool {
	return bt.IsValid() && bt != MemoryBackend
}
