package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"islamicTodo/internal/repository"
	"islamicTodo/internal/repository/kv/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStorage_New тестирует создание хранилища
func TestStorage_New(t *testing.T) {
	storage := inmemory.NewStorage()
	assert.NotNil(t, storage)
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestStorage_GetSet тестирует запись и чтение ключа
func TestStorage_GetSet(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	_, err := storage.Get(ctx, "tasks")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, storage.Set(ctx, "tasks", `[]`))
	value, err := storage.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)

	// перезапись целиком
	require.NoError(t, storage.Set(ctx, "tasks", `[{"id":"1"}]`))
	value, err = storage.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, value)

	require.NoError(t, storage.Delete(ctx, "tasks"))
	_, err = storage.Get(ctx, "tasks")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestStorage_ConcurrentAccess тестирует конкурентный доступ
func TestStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewStorage()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				key := fmt.Sprintf("key-%d-%d", workerID, j)
				assert.NoError(t, storage.Set(ctx, key, "value"))
				_, err := storage.Get(ctx, key)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()
}
