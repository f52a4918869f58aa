package service

import (
	"time"

	"islamicTodo/internal/models/task"

	"github.com/google/uuid"
)

const DefaultTasksKey = "tasks"

type Clock func() time.Time

type IDGenerator func() (task.ID, error)

type StoreOption func(*TaskStore)

func WithClock(clock Clock) StoreOption {
	if clock == nil {
		return nil
	}
	return func(s *TaskStore) {
		s.clock = clock
	}
}

func WithIDGenerator(gen IDGenerator) StoreOption {
	if gen == nil {
		return nil
	}
	return func(s *TaskStore) {
		s.newID = gen
	}
}

func WithKey(key string) StoreOption {
	if key == "" {
		return nil
	}
	return func(s *TaskStore) {
		s.key = key
	}
}

// NewTimeOrderedID - UUIDv7: миллисекундная метка времени плюс случайные биты,
// две задачи в одну миллисекунду не получат одинаковый id
func NewTimeOrderedID() (task.ID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return task.ID(id.String()), nil
}
