package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/contas/internal/kv/memory"
)

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, ok, err := s.Get(ctx, "contas")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte(`[{"id":"1"}]`)
	require.NoError(t, s.Set(ctx, "contas", value))

	// Mutating the caller's buffer must not leak into the store.
	value[0] = 'x'

	got, ok, err := s.Get(ctx, "contas")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, s.Remove(ctx, "contas"))

	_, ok, err = s.Get(ctx, "contas")
	require.NoError(t, err)
	assert.False(t, ok)
}
