package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"islamicTodo/internal/logger"
	repo "islamicTodo/internal/repository"

	"go.uber.org/zap"
)

const DarkModeKey = "darkMode"

type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Theme хранит флаг тёмной темы. Значение читается из хранилища один раз,
// дальше источником истины служит память.
type Theme struct {
	storage    Storage
	preferDark bool

	mtx    sync.Mutex
	loaded bool
	dark   bool
}

// NewTheme: preferDark - значение по умолчанию, когда сохранённого нет
func NewTheme(storage Storage, preferDark bool) *Theme {
	return &Theme{
		storage:    storage,
		preferDark: preferDark,
	}
}

func (t *Theme) DarkMode(ctx context.Context) bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.load(ctx)
	return t.dark
}

// SetDarkMode меняет значение в памяти сразу; ошибка записи возвращается как предупреждение
func (t *Theme) SetDarkMode(ctx context.Context, dark bool) (bool, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.loaded = true
	t.dark = dark
	return t.dark, t.persist(ctx)
}

func (t *Theme) Toggle(ctx context.Context) (bool, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.load(ctx)
	t.dark = !t.dark
	return t.dark, t.persist(ctx)
}

// load вызывается под мьютексом
func (t *Theme) load(ctx context.Context) {
	if t.loaded {
		return
	}
	t.loaded = true
	t.dark = t.preferDark

	raw, err := t.storage.Get(ctx, DarkModeKey)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			logger.Warn("Preferences: Не удалось прочитать тему, используем значение по умолчанию", zap.Error(err))
		}
		return
	}

	var dark bool
	if err := json.Unmarshal([]byte(raw), &dark); err != nil {
		logger.Warn("Preferences: Сохранённая тема повреждена",
			zap.String("value", raw),
			zap.Error(err))
		return
	}
	t.dark = dark
}

func (t *Theme) persist(ctx context.Context) error {
	if err := t.storage.Set(ctx, DarkModeKey, strconv.FormatBool(t.dark)); err != nil {
		logger.Warn("Preferences: Не удалось сохранить тему", zap.Error(err))
		return fmt.Errorf("сохранение темы: %w", err)
	}
	return nil
}
