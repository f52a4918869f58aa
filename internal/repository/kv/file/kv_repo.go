package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"islamicTodo/internal/logger"
	repo "islamicTodo/internal/repository"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Storage хранит каждый ключ отдельным файлом <dir>/<key>.json.
// Запись идёт во временный файл с последующим rename, поэтому читатель
// никогда не увидит половину документа.
type Storage struct {
	fs  afero.Fs
	dir string
}

func New(dir string) (*Storage, error) {
	return NewWithFs(afero.NewOsFs(), dir)
}

func NewWithFs(fs afero.Fs, dir string) (*Storage, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Repository: Не удалось создать каталог данных", err, zap.String("dir", dir))
		return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
	}
	logger.Info("Repository: Файловое хранилище готово", zap.String("dir", dir))
	return &Storage{fs: fs, dir: dir}, nil
}

func (s *Storage) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("недопустимый ключ %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if _, err := s.fs.Stat(s.dir); err != nil {
		logger.Error("Repository: Каталог данных недоступен", err)
		return fmt.Errorf("проверка каталога: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", repo.ErrNotFound
		}
		return "", fmt.Errorf("чтение %s: %w", key, err)
	}
	return string(data), nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("запись %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("закрытие %s: %w", key, err)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("замена %s: %w", key, err)
	}
	return nil
}
