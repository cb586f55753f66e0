package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGet_MissingKey(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "kv.db"))

	v, ok, err := s.Get(context.Background(), "weatherwise_settings")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSetThenGet(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "weatherwise_settings", `{"theme":"dark"}`))
	require.NoError(t, s.Set(ctx, "weatherwise_settings", `{"theme":"light"}`))

	v, ok, err := s.Get(ctx, "weatherwise_settings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"theme":"light"}`, v)
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "weatherwise_theme_change", "dark"))
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	v, ok, err := second.Get(ctx, "weatherwise_theme_change")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestEmptyValueIsStored(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "kv.db"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", ""))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestCheckReadiness(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "kv.db"))
	assert.NoError(t, s.CheckReadiness(context.Background()))
}
