package redis

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithClientPrefix(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	s := NewWithClient(client, "")
	assert.Equal(t, "fatura:invoices", s.redisKey("invoices"))

	s = NewWithClient(client, "tenant-a:")
	assert.Equal(t, "tenant-a:invoices", s.redisKey("invoices"))
}

func TestConnectRequiresAddr(t *testing.T) {
	_, err := Connect(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address is required")
}

func TestConnectFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, Options{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
