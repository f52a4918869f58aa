package worker

import (
	"context"
	"fmt"
	"time"

	"islamicTodo/internal/logger"
	"islamicTodo/internal/models/task"
	"islamicTodo/internal/query"

	rcron "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSchedule  = "@every 5m"
	DefaultBatchSize = 100
)

// TaskSource - снимок коллекции задач, воркер ничего в ней не меняет
type TaskSource interface {
	Tasks() []task.Task
}

// Reminder - результат одной проверки
type Reminder struct {
	Overdue int
	Titles  []string
}

type OverdueWorker struct {
	source    TaskSource
	schedule  string
	batchSize int
	clock     func() time.Time
	notify    func(Reminder)

	cron *rcron.Cron
}

type Option func(*OverdueWorker)

func WithSchedule(expr string) Option {
	if expr == "" {
		return nil
	}
	return func(w *OverdueWorker) {
		w.schedule = expr
	}
}

func WithBatchSize(n int) Option {
	if n <= 0 {
		return nil
	}
	return func(w *OverdueWorker) {
		w.batchSize = n
	}
}

func WithClock(clock func() time.Time) Option {
	if clock == nil {
		return nil
	}
	return func(w *OverdueWorker) {
		w.clock = clock
	}
}

// WithNotify - дополнительный получатель напоминаний (кроме лога)
func WithNotify(fn func(Reminder)) Option {
	if fn == nil {
		return nil
	}
	return func(w *OverdueWorker) {
		w.notify = fn
	}
}

func NewOverdueWorker(source TaskSource, options ...Option) (*OverdueWorker, error) {
	w := &OverdueWorker{
		source:    source,
		schedule:  DefaultSchedule,
		batchSize: DefaultBatchSize,
		clock:     time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}

	w.cron = rcron.New()
	if _, err := w.cron.AddFunc(w.schedule, func() { w.Check(context.Background()) }); err != nil {
		return nil, fmt.Errorf("неверное расписание воркера %q: %w", w.schedule, err)
	}
	return w, nil
}

// Start блокируется до отмены ctx
func (w *OverdueWorker) Start(ctx context.Context) {
	logger.Info("Worker: Фоновая проверка просроченных задач запущена", zap.String("schedule", w.schedule))
	w.cron.Start()

	<-ctx.Done()

	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	logger.Info("Worker: Фоновая проверка остановлена")
}

func (w *OverdueWorker) Check(ctx context.Context) Reminder {
	start := time.Now()

	if ctx.Err() != nil {
		return Reminder{}
	}

	tasks := w.source.Tasks()
	overdue := query.Apply(tasks, query.Params{Filter: query.FilterOverdue, Sort: query.SortDeadline}, w.clock())

	reminder := Reminder{Overdue: len(overdue)}
	for _, t := range overdue {
		if len(reminder.Titles) == w.batchSize {
			break
		}
		reminder.Titles = append(reminder.Titles, t.Title)
	}

	if reminder.Overdue > 0 {
		logger.Warn("Worker: Есть просроченные задачи",
			zap.Int("overdue", reminder.Overdue),
			zap.Strings("titles", reminder.Titles))
		if w.notify != nil {
			w.notify(reminder)
		}
	}

	logger.Info("Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", reminder.Overdue))

	return reminder
}
