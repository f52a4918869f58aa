package preferences_test

import (
	"context"
	"errors"
	"testing"

	"islamicTodo/internal/preferences"
	"islamicTodo/internal/repository/kv/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	getErr error
	setErr error
	value  string
}

func (f *failingStorage) Get(ctx context.Context, key string) (string, error) {
	return f.value, f.getErr
}

func (f *failingStorage) Set(ctx context.Context, key, value string) error {
	return f.setErr
}

func TestTheme_DefaultsToAmbientPreference(t *testing.T) {
	ctx := context.Background()

	assert.False(t, preferences.NewTheme(inmemory.NewStorage(), false).DarkMode(ctx))
	assert.True(t, preferences.NewTheme(inmemory.NewStorage(), true).DarkMode(ctx))
}

func TestTheme_ReadsStoredValue(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	require.NoError(t, storage.Set(ctx, preferences.DarkModeKey, "true"))

	assert.True(t, preferences.NewTheme(storage, false).DarkMode(ctx))
}

func TestTheme_MalformedValueFallsBack(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	require.NoError(t, storage.Set(ctx, preferences.DarkModeKey, `"yes please"`))

	assert.True(t, preferences.NewTheme(storage, true).DarkMode(ctx))
	assert.False(t, preferences.NewTheme(storage, false).DarkMode(ctx))
}

func TestTheme_ToggleIsPersisted(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	theme := preferences.NewTheme(storage, false)

	dark, err := theme.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, dark)

	raw, err := storage.Get(ctx, preferences.DarkModeKey)
	require.NoError(t, err)
	assert.Equal(t, "true", raw)

	dark, err = theme.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, dark)

	// новое значение переживает перезапуск
	assert.False(t, preferences.NewTheme(storage, true).DarkMode(ctx))
}

func TestTheme_SetDarkMode(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()
	theme := preferences.NewTheme(storage, false)

	dark, err := theme.SetDarkMode(ctx, true)
	require.NoError(t, err)
	assert.True(t, dark)
	assert.True(t, preferences.NewTheme(storage, false).DarkMode(ctx))
}

func TestTheme_StorageFailures(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{
		getErr: errors.New("storage unavailable"),
		setErr: errors.New("quota exceeded"),
	}
	theme := preferences.NewTheme(storage, true)

	assert.True(t, theme.DarkMode(ctx))

	dark, err := theme.Toggle(ctx)
	assert.Error(t, err)
	assert.False(t, dark)
	// значение в памяти остаётся актуальным
	assert.False(t, theme.DarkMode(ctx))
}
