package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	getErr error
	setErr error
	sets   int
}

func (f *failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, f.getErr
}

func (f *failingStore) Set(context.Context, string, string) error {
	f.sets++
	return f.setErr
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "lang", "en"))
	require.NoError(t, store.Set(ctx, "lang", "zh"))

	v, ok, err := store.Get(ctx, "lang")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "zh", v)
	assert.NoError(t, store.Ping(ctx))
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, PromptDismissedKey, "true"))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	prompt := NewInstallPrompt(ctx, second, nil)
	assert.True(t, prompt.Dismissed())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v"))
	v, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestInstallPrompt(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	prompt := NewInstallPrompt(ctx, store, nil)
	assert.True(t, prompt.ShouldShow(false))
	assert.False(t, prompt.ShouldShow(true), "installed clients never see the prompt")

	require.NoError(t, prompt.Dismiss(ctx))
	assert.False(t, prompt.ShouldShow(false))

	v, ok, _ := store.Get(ctx, PromptDismissedKey)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	// a fresh session reads the flag back
	assert.True(t, NewInstallPrompt(ctx, store, nil).Dismissed())
}

func TestInstallPromptWritesOnce(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	prompt := NewInstallPrompt(ctx, store, nil)

	require.NoError(t, prompt.Dismiss(ctx))
	require.NoError(t, prompt.Dismiss(ctx))
	assert.Equal(t, 1, store.sets)
}

func TestInstallPromptStoreFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("read failure shows the prompt", func(t *testing.T) {
		prompt := NewInstallPrompt(ctx, &failingStore{getErr: errors.New("locked")}, nil)
		assert.True(t, prompt.ShouldShow(false))
	})

	t.Run("write failure keeps the prompt", func(t *testing.T) {
		prompt := NewInstallPrompt(ctx, &failingStore{setErr: errors.New("read-only")}, nil)
		assert.Error(t, prompt.Dismiss(ctx))
		assert.False(t, prompt.Dismissed())
	})
}
