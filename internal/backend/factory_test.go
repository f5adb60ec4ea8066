package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatura/internal/config"
	"fatura/internal/kv"
	"fatura/internal/kv/file"
	"fatura/internal/storage"
)

func TestCreateStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, s kv.Store)
	}{
		{
			name:   "memory",
			config: Config{Type: MemoryBackend},
		},
		{
			name:   "file",
			config: Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "data")},
			check: func(t *testing.T, s kv.Store) {
				assert.IsType(t, &file.Store{}, s)
			},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "fatura.db")},
			check: func(t *testing.T, s kv.Store) {
				assert.IsType(t, &storage.SQLiteStore{}, s)
			},
		},
	}

	f := NewFactory(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := f.CreateStore(ctx, tt.config)
			require.NoError(t, err)
			defer res.Close()

			assert.Equal(t, tt.config.Type, res.Type)
			if tt.check != nil {
				tt.check(t, res.Store)
			}

			require.NoError(t, res.Store.Save(ctx, "invoices", []byte(`[]`)))
			got, err := res.Store.Load(ctx, "invoices")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))
		})
	}
}

func TestCreateStoreRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	tests := []Config{
		{Type: "sheets"},
		{Type: FileBackend},
		{Type: SQLiteBackend},
		{Type: RedisBackend},
		{Type: S3Backend},
	}
	for _, cfg := range tests {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			_, err := f.CreateStore(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		StorageBackend: "redis",
		RedisAddr:      "cache:6379",
		RedisDB:        2,
		DataDir:        "./data",
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, RedisBackend, cfg.Type)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.NoError(t, cfg.Validate())

	_, err = FromAppConfig(&config.Config{StorageBackend: "nope"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestBackendTypes(t *testing.T) {
	assert.Equal(t, []string{"memory", "file", "sqlite", "redis", "s3"}, GetBackendTypeStrings())
	assert.False(t, MemoryBackend.Persistent())
	assert.True(t, SQLiteBackend.Persistent())
	assert.False(t, BackendType("x").Persistent())
}
