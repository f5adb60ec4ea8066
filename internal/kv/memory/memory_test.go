package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatura/internal/kv"
)

func TestMemoryStoreLoadSave(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Load(ctx, "invoices")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	blob := []byte(`[]`)
	require.NoError(t, s.Save(ctx, "invoices", blob))
	blob[0] = 'x' // caller mutation must not leak into the store

	got, err := s.Load(ctx, "invoices")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	assert.Equal(t, 1, s.Saves())
}

func TestNewSeeded(t *testing.T) {
	s := NewSeeded(map[string][]byte{"k": []byte("v")})
	got, err := s.Load(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, 0, s.Saves())
}
