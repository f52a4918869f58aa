package inmemory

import (
	"context"
	"sync"

	"islamicTodo/internal/logger"
	repo "islamicTodo/internal/repository"
)

type Storage struct {
	storage map[string]string
	mtx     *sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		storage: make(map[string]string),
		mtx:     &sync.RWMutex{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Хранилище в памяти доступно")
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	value, ok := s.storage[key]
	if !ok {
		return "", repo.ErrNotFound
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.storage[key] = value
	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.storage, key)
	return nil
}
