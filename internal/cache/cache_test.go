package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyNormalizes(t *testing.T) {
	assert.Equal(t, Key("What causes  migraines?"), Key(" what causes migraines? "))
	assert.NotEqual(t, Key("What causes migraines?"), Key("What causes fever?"))
}

func TestMemoryExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v"))
	val, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	now = now.Add(time.Minute)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url", time.Minute)
	assert.Error(t, err)
}

func TestMemorySetDropsExpiredEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		require.NoError(t, m.Set(ctx, Key(fmt.Sprintf("question %d", i)), "answer"))
	}
	require.Len(t, m.entries, 10000)

	now = now.Add(24 * time.Hour)
	require.NoError(t, m.Set(ctx, "fresh", "answer"))
	assert.Len(t, m.entries, 1)

	val, ok, err := m.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "answer", val)
}
