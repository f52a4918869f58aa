package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"islamicTodo/internal/logger"
	"islamicTodo/internal/models/task"
	repo "islamicTodo/internal/repository"

	"go.uber.org/zap"
)

// Change - результат мутации. Tasks - коллекция после операции,
// Task - затронутая задача (nil, если id не найден),
// Warning - нефатальная ошибка сохранения.
type Change struct {
	Tasks   []task.Task
	Task    *task.Task
	Found   bool
	Warning error
}

type Listener func([]task.Task)

// TaskStore - единственный владелец коллекции задач. Любая успешная мутация
// целиком перезаписывает коллекцию в Storage и рассылает её подписчикам.
type TaskStore struct {
	storage Storage
	key     string
	clock   Clock
	newID   IDGenerator

	mtx       sync.Mutex
	tasks     []task.Task
	listeners map[int]Listener
	nextSubID int
}

func NewTaskStore(storage Storage, options ...StoreOption) *TaskStore {
	s := &TaskStore{
		storage:   storage,
		key:       DefaultTasksKey,
		clock:     time.Now,
		newID:     NewTimeOrderedID,
		tasks:     []task.Task{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *TaskStore) HealthCheck(ctx context.Context) error {
	if err := s.storage.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// Initialize загружает сохранённую коллекцию. Отсутствующие или битые данные
// дают пустую коллекцию, возвращаемая ошибка всегда *Warning.
func (s *TaskStore) Initialize(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.tasks = []task.Task{}

	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Store: Сохранённых задач нет, начинаем с пустого списка")
			return nil
		}
		logger.Warn("Store: Не удалось прочитать задачи", zap.Error(err))
		return &Warning{Op: "load", Err: err}
	}

	var stored []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Warn("Store: Сохранённые задачи повреждены, начинаем с пустого списка", zap.Error(err))
		return &Warning{Op: "decode", Err: err}
	}

	seen := make(map[task.ID]struct{}, len(stored))
	dropped := 0
	for i, item := range stored {
		var t task.Task
		if err := json.Unmarshal(item, &t); err != nil {
			logger.Warn("Store: Пропущена некорректная запись", zap.Int("index", i), zap.Error(err))
			dropped++
			continue
		}
		t.Title = strings.TrimSpace(t.Title)
		priority, err := task.ParsePriority(string(t.Priority))
		if t.ID == "" || t.Title == "" || err != nil {
			dropped++
			continue
		}
		t.Priority = priority
		if _, dup := seen[t.ID]; dup {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		t.Tags = task.NormalizeTags(t.Tags)
		s.tasks = append(s.tasks, t)
	}

	logger.Info("Store: Задачи загружены",
		zap.Int("count", len(s.tasks)),
		zap.Int("dropped", dropped))

	if dropped > 0 {
		return &Warning{Op: "decode", Err: fmt.Errorf("пропущено некорректных записей: %d", dropped)}
	}
	return nil
}

// Tasks возвращает копию текущей коллекции
func (s *TaskStore) Tasks() []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return cloneTasks(s.tasks)
}

func (s *TaskStore) Get(id task.ID) (task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return task.Task{}, false
}

func (s *TaskStore) Add(ctx context.Context, in task.Input) (Change, error) {
	normalized, err := in.Normalize()
	if err != nil {
		logger.Warn("Store: Ошибка валидации", zap.String("field", "priority"), zap.Error(err))
		return Change{}, NewValidationError("priority", err.Error())
	}
	if normalized.Title == "" {
		logger.Warn("Store: Ошибка валидации", zap.String("field", "title"), zap.String("error", "empty_field"))
		return Change{}, NewValidationError("title", "название не может быть пустым")
	}

	s.mtx.Lock()

	id, err := s.uniqueID()
	if err != nil {
		s.mtx.Unlock()
		logger.Error("Store: Не удалось сгенерировать id", err)
		return Change{}, fmt.Errorf("генерация id: %w", err)
	}

	created := task.Task{
		ID:          id,
		Title:       normalized.Title,
		Description: normalized.Description,
		Deadline:    normalized.Deadline,
		Priority:    normalized.Priority,
		Tags:        normalized.Tags,
		Completed:   false,
		CreatedAt:   s.clock(),
	}
	s.tasks = append(s.tasks, created)

	change := s.commit(ctx, "add")
	change.Task = ptr(created.Clone())
	change.Found = true
	s.mtx.Unlock()

	logger.Info("Store: Задача создана", zap.String("task_id", id.String()))
	s.broadcast(change.Tasks)
	return change, nil
}

// ToggleComplete инвертирует completed. Неизвестный id - не ошибка, коллекция не меняется.
func (s *TaskStore) ToggleComplete(ctx context.Context, id task.ID) Change {
	s.mtx.Lock()

	i := s.indexOf(id)
	if i < 0 {
		tasks := cloneTasks(s.tasks)
		s.mtx.Unlock()
		logger.Info("Store: Задача для переключения не найдена", zap.String("task_id", id.String()))
		return Change{Tasks: tasks}
	}

	s.tasks[i].Completed = !s.tasks[i].Completed
	toggled := s.tasks[i].Clone()

	change := s.commit(ctx, "toggle")
	change.Task = &toggled
	change.Found = true
	s.mtx.Unlock()

	logger.Info("Store: Статус задачи изменён",
		zap.String("task_id", id.String()),
		zap.Bool("completed", toggled.Completed))
	s.broadcast(change.Tasks)
	return change
}

func (s *TaskStore) Delete(ctx context.Context, id task.ID) Change {
	s.mtx.Lock()

	i := s.indexOf(id)
	if i < 0 {
		tasks := cloneTasks(s.tasks)
		s.mtx.Unlock()
		logger.Info("Store: Задача для удаления не найдена", zap.String("task_id", id.String()))
		return Change{Tasks: tasks}
	}

	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)

	change := s.commit(ctx, "delete")
	change.Task = &removed
	change.Found = true
	s.mtx.Unlock()

	logger.Info("Store: Задача удалена", zap.String("task_id", id.String()))
	s.broadcast(change.Tasks)
	return change
}

// Subscribe регистрирует слушателя, который синхронно получает коллекцию
// после каждой успешной мутации. Возвращает функцию отписки.
func (s *TaskStore) Subscribe(listener Listener) func() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = listener

	return func() {
		s.mtx.Lock()
		defer s.mtx.Unlock()
		delete(s.listeners, id)
	}
}

// commit сохраняет коллекцию; вызывается под мьютексом
func (s *TaskStore) commit(ctx context.Context, op string) Change {
	change := Change{Tasks: cloneTasks(s.tasks)}
	if err := s.persist(ctx); err != nil {
		logger.Warn("Store: Не удалось сохранить задачи, работаем с данными в памяти",
			zap.String("operation", op),
			zap.Error(err))
		change.Warning = &Warning{Op: op, Err: err}
	}
	return change
}

func (s *TaskStore) persist(ctx context.Context) error {
	start := time.Now()

	data, err := json.Marshal(s.tasks)
	if err != nil {
		return fmt.Errorf("сериализация задач: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("запись задач: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Store: Медленное сохранение", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *TaskStore) broadcast(tasks []task.Task) {
	s.mtx.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mtx.Unlock()

	for _, l := range listeners {
		l(cloneTasks(tasks))
	}
}

func (s *TaskStore) uniqueID() (task.ID, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", err
		}
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", errors.New("не удалось получить уникальный id")
}

func (s *TaskStore) indexOf(id task.ID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []task.Task) []task.Task {
	res := make([]task.Task, len(tasks))
	for i, t := range tasks {
		res[i] = t.Clone()
	}
	return res
}

func ptr[T any](v T) *T {
	return &v
}
