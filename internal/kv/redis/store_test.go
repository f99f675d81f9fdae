package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/contas/internal/kv/redis"
)

func setupStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := redis.New(context.Background(), redis.Options{Addr: mr.Addr(), Prefix: "contas:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

func TestStore_SetAndGet(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	require.NoError(t, s.Set(ctx, "bills", []byte(`[{"id":"a"}]`)))

	got, ok, err := s.Get(ctx, "bills")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	raw, err := mr.Get("contas:bills")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, raw)
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := setupStore(t)

	got, ok, err := s.Get(context.Background(), "nothing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	require.NoError(t, s.Set(ctx, "bills", []byte(`[]`)))
	require.NoError(t, s.Remove(ctx, "bills"))
	assert.False(t, mr.Exists("contas:bills"))
}

func TestStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t)

	mr.SetError("ERR storage offline")

	_, _, err := s.Get(ctx, "bills")
	assert.Error(t, err)
	assert.Error(t, s.Set(ctx, "bills", []byte(`[]`)))
}

func TestNew_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	addr := mr.Addr()
	mr.Close()

	_, err = redis.New(context.Background(), redis.Options{Addr: addr})
	assert.Error(t, err)
}
