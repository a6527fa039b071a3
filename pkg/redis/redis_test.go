package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	cfg := Config{URL: "redis://localhost:6379/2", ReadTimeout: 1, WriteTimeout: 2, DialTimeout: 4}
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, 2*time.Second, opts.WriteTimeout)
	assert.Equal(t, 4*time.Second, opts.DialTimeout)

	_, err = (&Config{}).Options()
	assert.Error(t, err)

	_, err = (&Config{URL: "not-a-url"}).Options()
	assert.Error(t, err)
}

func TestNewPings(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := Config{URL: "redis://" + mr.Addr(), ReadTimeout: 1, WriteTimeout: 1, DialTimeout: 1}
	client, err := cfg.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

func TestNewUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := Config{URL: "redis://" + addr, ReadTimeout: 1, WriteTimeout: 1, DialTimeout: 1}
	_, err := cfg.New(context.Background())
	assert.Error(t, err)
}
