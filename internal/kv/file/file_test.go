package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatura/internal/kv"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	s, err := New(dir)
	require.NoError(t, err)

	_, err = s.Load(ctx, "invoices")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Save(ctx, "invoices", []byte(`[{"id":1}]`)))
	require.NoError(t, s.Save(ctx, "invoices", []byte(`[]`)))

	got, err := s.Load(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	onDisk, err := os.ReadFile(filepath.Join(dir, "invoices.json"))
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(onDisk))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	err = s.Save(context.Background(), "../outside", []byte(`[]`))
	assert.ErrorIs(t, err, kv.ErrInvalidKey)

	_, err = s.Load(context.Background(), "a/b")
	assert.ErrorIs(t, err, kv.ErrInvalidKey)
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, "invoices", []byte(`[]`)), context.Canceled)
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
