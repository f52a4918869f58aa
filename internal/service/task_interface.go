package service

import "context"

// Storage - синхронное key/value хранилище, через которое TaskStore
// сохраняет коллекцию. Get возвращает repository.ErrNotFound, если ключа нет.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	HealthCheck(ctx context.Context) error
}
