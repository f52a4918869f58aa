package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"islamicTodo/internal/config"
	"islamicTodo/internal/handlers"
	"islamicTodo/internal/logger"
	"islamicTodo/internal/middleware"
	"islamicTodo/internal/preferences"
	"islamicTodo/internal/prayer"
	"islamicTodo/internal/quotes"
	"islamicTodo/internal/service"
	"islamicTodo/internal/worker"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	store     *service.TaskStore
	worker    *worker.OverdueWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init собирает зависимости: логгер, хранилище, задачи, HTTP, воркер
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	storage, closeStorage, err := OpenStorage(ctx, a.config)
	if err != nil {
		return nil, fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		closeStorage()
	})

	a.store = service.NewTaskStore(storage)
	if err := a.store.Initialize(ctx); err != nil {
		// не фатально: работаем с пустым списком
		logger.Warn("Задачи загружены с предупреждением", zap.Error(err))
	}

	theme := preferences.NewTheme(storage, a.config.UI.PreferDark)
	prayerClient := prayer.NewClient(
		prayer.WithBaseURL(a.config.Prayer.BaseURL),
		prayer.WithMethod(a.config.Prayer.Method),
		prayer.WithTimeout(a.config.Prayer.Timeout),
	)

	handler := handlers.NewTaskHandler(a.store,
		handlers.WithTheme(theme),
		handlers.WithQuotes(quotes.NewPicker(nil)),
		handlers.WithPrayer(prayerClient, a.config.Prayer.City, a.config.Prayer.Country),
	)

	a.router = chi.NewRouter()
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recover)
	a.router.Use(middleware.Logging)
	a.router.Use(middleware.CORS(a.config.Server.CORSOrigins))
	a.router.Use(middleware.RateLimit(a.config.Server.RateLimit))
	handler.Routes(a.router)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	if a.config.Worker.Enabled {
		a.worker, err = worker.NewOverdueWorker(a.store,
			worker.WithSchedule(a.config.Worker.Schedule),
			worker.WithBatchSize(a.config.Worker.BatchSize),
		)
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	g, gctx := errgroup.WithContext(ctx)
	// потоки /tasks/stream закрываются вместе с приложением
	a.server.BaseContext = func(net.Listener) context.Context { return gctx }

	g.Go(func() error {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка сервера...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.worker != nil {
		g.Go(func() error {
			a.worker.Start(gctx)
			return nil
		})
	}

	return g.Wait()
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
