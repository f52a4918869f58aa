package handlers

import (
	"context"

	"islamicTodo/internal/models/task"
	"islamicTodo/internal/prayer"
	"islamicTodo/internal/quotes"
	"islamicTodo/internal/service"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	Tasks() []task.Task
	Add(ctx context.Context, in task.Input) (service.Change, error)
	ToggleComplete(ctx context.Context, id task.ID) service.Change
	Delete(ctx context.Context, id task.ID) service.Change
	Subscribe(listener service.Listener) func()
}

type ThemeService interface {
	DarkMode(ctx context.Context) bool
	SetDarkMode(ctx context.Context, dark bool) (bool, error)
	Toggle(ctx context.Context) (bool, error)
}

type PrayerService interface {
	Timings(ctx context.Context, city, country string) (prayer.Timings, error)
}

type QuoteService interface {
	Random() quotes.Quote
}
