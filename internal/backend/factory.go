package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fatura/internal/kv/file"
	"fatura/internal/kv/memory"
	kvredis "fatura/internal/kv/redis"
	kvs3 "fatura/internal/kv/s3"
	"fatura/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case MemoryBackend:
		res = &BackendResult{Store: memory.New()}
		f.logger.Warn("Using in-memory storage, invoices will be lost on restart")
	case FileBackend:
		res, err = f.createFileStore(config)
	case SQLiteBackend:
		res, err = f.createSQLiteStore(config)
	case RedisBackend:
		res, err = f.createRedisStore(ctx, config)
	case S3Backend:
		res, err = f.createS3Store(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	res.Type = config.Type
	return res, nil
}

func (f *DefaultFactory) createFileStore(config Config) (*BackendResult, error) {
	store, err := file.New(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	f.logger.Info("Initialized file backend", "data_directory", config.DataDirectory)
	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*BackendResult, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createRedisStore(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := kvredis.Connect(ctx, kvredis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis store: %w", err)
	}

	f.logger.Info("Initialized Redis backend", "addr", config.RedisAddr, "db", config.RedisDB)
	return &BackendResult{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createS3Store(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := kvs3.New(ctx, kvs3.Options{
		Bucket:          config.S3Bucket,
		Region:          config.S3Region,
		Prefix:          config.S3Prefix,
		Endpoint:        config.S3Endpoint,
		AccessKeyID:     config.AWSAccessKeyID,
		SecretAccessKey: config.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 store: %w", err)
	}

	f.logger.Info("Initialized S3 backend", "bucket", config.S3Bucket, "prefix", config.S3Prefix)
	return &BackendResult{Store: store}, nil
}
