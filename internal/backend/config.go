package backend

import (
	"fmt"

	"fatura/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.StorageBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.StorageBackend)
	}

	return Config{
		Type: backendType,

		DataDirectory: appConfig.DataDir,
		SQLiteDBPath:  appConfig.SQLiteDBPath,

		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,

		S3Bucket:           appConfig.S3Bucket,
		S3Region:           appConfig.S3Region,
		S3Prefix:           appConfig.S3Prefix,
		S3Endpoint:         appConfig.S3Endpoint,
		AWSAccessKeyID:     appConfig.AWSAccessKeyID,
		AWSSecretAccessKey: appConfig.AWSSecretAccessKey,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case FileBackend:
		if c.DataDirectory == "" {
			return fmt.Errorf("data directory is required for file backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case RedisBackend:
		if c.RedisAddr == "" {
			return fmt.Errorf("Redis address is required for redis backend")
		}
	case S3Backend:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 backend")
		}
	case MemoryBackend:
		// nothing to check
	}

	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, FileBackend, SQLiteBackend, RedisBackend, S3Backend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
