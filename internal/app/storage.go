package app

import (
	"context"
	"fmt"

	"islamicTodo/internal/config"
	"islamicTodo/internal/logger"
	"islamicTodo/internal/repository/kv/file"
	"islamicTodo/internal/repository/kv/inmemory"
	"islamicTodo/internal/repository/kv/postgres"
	"islamicTodo/internal/repository/kv/sqlite"
	"islamicTodo/internal/service"

	"go.uber.org/zap"
)

// OpenStorage выбирает key/value хранилище по repository.type.
// Возвращаемая функция закрывает соединения, если они есть.
func OpenStorage(ctx context.Context, cfg *config.Config) (service.Storage, func(), error) {
	noop := func() {}

	logger.Info("Repository: Выбор хранилища", zap.String("type", cfg.Repository.Type))

	switch cfg.Repository.Type {
	case config.RepositoryInMemory:
		return inmemory.NewStorage(), noop, nil

	case config.RepositoryFile:
		s, err := file.New(cfg.Repository.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case config.RepositorySQLite:
		s, err := sqlite.New(cfg.Repository.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.RepositoryPostgres:
		s, err := postgres.New(ctx, cfg.Database.URL, postgres.PoolConfig{
			MaxConnections: int32(cfg.Database.MaxConnections),
			MinConnections: int32(cfg.Database.MinConnections),
			IdleTimeout:    cfg.Database.IdleTimeout,
		})
		if err != nil {
			return nil, noop, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, noop, err
		}
		return s, s.Close, nil

	default:
		return nil, noop, fmt.Errorf("неизвестный тип хранилища %q", cfg.Repository.Type)
	}
}
