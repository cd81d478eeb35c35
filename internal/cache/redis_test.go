package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithoutAddressIsDisabled(t *testing.T) {
	c, err := New("", "", 0, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.False(t, c.Enabled())
}

func TestNilCacheIsAlwaysEmpty(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, KeyBrands, []string{"Toyota"}, ReferenceTTL))

	var out []string
	assert.ErrorIs(t, c.Get(ctx, KeyBrands, &out), ErrMiss)
	assert.NoError(t, c.Delete(ctx, KeyBrands, KeyCarTypes))
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestGetOrLoadWithoutRedis(t *testing.T) {
	var c *Cache
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"Toyota", "Honda"}, nil
	}

	for i := 0; i < 2; i++ {
		got, err := GetOrLoad(context.Background(), c, KeyBrands, ReferenceTTL, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Toyota", "Honda"}, got)
	}
	assert.Equal(t, 2, calls)

	boom := errors.New("boom")
	_, err := GetOrLoad(context.Background(), c, KeyBrands, ReferenceTTL, func() ([]string, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestNewUnreachable(t *testing.T) {
	_, err := New("127.0.0.1:1", "", 0, zap.NewNop())
	assert.Error(t, err)
}
