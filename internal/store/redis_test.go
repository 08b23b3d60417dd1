package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	kv := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "rollbook:")
	t.Cleanup(func() { _ = kv.Close() })
	return kv, mr
}

func TestRedis_PutGet(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestRedis(t)

	require.NoError(t, kv.Put(ctx, map[string][]byte{
		KeyTheme:    []byte("dark"),
		KeyLanguage: []byte("tr"),
	}))

	v, err := kv.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(v))

	raw, err := mr.Get("rollbook:language")
	require.NoError(t, err)
	assert.Equal(t, "tr", raw)

	_, err = kv.Get(ctx, KeyStudents)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, kv.Ping(ctx))
}

func TestRedis_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, _ := newTestRedis(t)

	snap, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	snap.Prefs.Theme = ThemeDark
	require.NoError(t, Save(ctx, kv, snap))

	again, err := Load(ctx, kv, nil)
	require.NoError(t, err)
	assert.Equal(t, snap.Sections, again.Sections)
	assert.Equal(t, ThemeDark, again.Prefs.Theme)
}

func TestRedis_Unreachable(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestRedis(t)
	mr.Close()

	_, err := Load(ctx, kv, nil)
	assert.Error(t, err)
	assert.Error(t, kv.Ping(ctx))
}
