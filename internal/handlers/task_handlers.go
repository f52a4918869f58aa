package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"islamicTodo/internal/handlers/dto"
	"islamicTodo/internal/logger"
	"islamicTodo/internal/models/task"
	"islamicTodo/internal/query"
	"islamicTodo/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService Service

	theme   ThemeService
	prayer  PrayerService
	quotes  QuoteService
	city    string
	country string
	clock   func() time.Time
}

type Option func(*TaskHandler)

func WithTheme(theme ThemeService) Option {
	return func(h *TaskHandler) {
		h.theme = theme
	}
}

func WithPrayer(p PrayerService, city, country string) Option {
	return func(h *TaskHandler) {
		h.prayer = p
		h.city = city
		h.country = country
	}
}

func WithQuotes(q QuoteService) Option {
	return func(h *TaskHandler) {
		h.quotes = q
	}
}

func WithClock(clock func() time.Time) Option {
	if clock == nil {
		return nil
	}
	return func(h *TaskHandler) {
		h.clock = clock
	}
}

func NewTaskHandler(taskService Service, options ...Option) *TaskHandler {
	h := &TaskHandler{
		TaskService: taskService,
		clock:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes регистрирует маршруты обработчика
func (s *TaskHandler) Routes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.GetTasks)               // GET /tasks
		r.Post("/", s.PostTask)              // POST /tasks
		r.Get("/stream", s.StreamTasks)      // GET /tasks/stream
		r.Post("/{id}/toggle", s.ToggleTask) // POST /tasks/{id}/toggle
		r.Delete("/{id}", s.DeleteTask)      // DELETE /tasks/{id}
	})

	r.Get("/preferences/theme", s.GetTheme)
	r.Put("/preferences/theme", s.PutTheme)
	r.Get("/quote", s.GetQuote)
	r.Get("/prayer-times", s.GetPrayerTimes)
	r.Get("/health", s.HealthCheck)
}

func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	params, err := parseListParams(r)
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		handleBusinessError(w, err)
		return
	}

	now := s.clock()
	all := s.TaskService.Tasks()
	tasks := query.Apply(all, params, now)

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("tasks", dto.FromTaskList(tasks, now)),
		toPayload("stats", query.Summarize(all, now)),
		toPayload("filter", params.Filter),
		toPayload("sort", params.Sort),
	)
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	in, err := request.ToInput()
	if err != nil {
		handleBusinessError(w, service.NewValidationError("deadline", err.Error()))
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задачи")
	change, err := s.TaskService.Add(r.Context(), in)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", change.Task.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, warningPayload([]Payload{
		toPayload("task", dto.FromTask(*change.Task, s.clock())),
	}, change.Warning)...)
}

func (s *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := task.ID(chi.URLParam(r, "id"))
	change := s.TaskService.ToggleComplete(r.Context(), id)
	if !change.Found {
		handleBusinessError(w, service.NewNotFound("задача", id.String()))
		return
	}

	logger.Info("HTTP_OUT: Статус задачи изменён",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, warningPayload([]Payload{
		toPayload("task", dto.FromTask(*change.Task, s.clock())),
	}, change.Warning)...)
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := task.ID(chi.URLParam(r, "id"))
	change := s.TaskService.Delete(r.Context(), id)
	if !change.Found {
		handleBusinessError(w, service.NewNotFound("задача", id.String()))
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)))

	// тело нужно только чтобы передать предупреждение
	if change.Warning != nil {
		responseWithJSON(w, http.StatusOK,
			toPayload("id", id.String()),
			toPayload("warning", change.Warning.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", "islamic-todo"),
			toPayload("error", err.Error()))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "islamic-todo"),
		toPayload("time", time.Now().UTC().Format(time.RFC3339)))
}

func (s *TaskHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	if s.theme == nil {
		responseWithError(w, http.StatusNotImplemented, "настройки темы не подключены")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("dark_mode", s.theme.DarkMode(r.Context())))
}

// PutTheme: {"dark_mode": bool} задаёт значение, пустое тело переключает
func (s *TaskHandler) PutTheme(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if s.theme == nil {
		responseWithError(w, http.StatusNotImplemented, "настройки темы не подключены")
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.ThemeRequest
	if err := decodeOptional(r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	var (
		dark bool
		err  error
	)
	if request.DarkMode != nil {
		dark, err = s.theme.SetDarkMode(r.Context(), *request.DarkMode)
	} else {
		dark, err = s.theme.Toggle(r.Context())
	}

	responseWithJSON(w, http.StatusOK, warningPayload([]Payload{toPayload("dark_mode", dark)}, err)...)
}

func (s *TaskHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	if s.quotes == nil {
		responseWithError(w, http.StatusNotImplemented, "цитаты не подключены")
		return
	}
	q := s.quotes.Random()
	responseWithJSON(w, http.StatusOK,
		toPayload("text", q.Text),
		toPayload("source", q.Source))
}

func (s *TaskHandler) GetPrayerTimes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if s.prayer == nil {
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("state", "unavailable"))
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if city == "" {
		city = s.city
	}
	if country == "" {
		country = s.country
	}

	timings, err := s.prayer.Timings(r.Context(), city, country)
	if err != nil {
		logger.Warn("HTTP: Время намазов недоступно",
			zap.Error(err),
			zap.Duration("ms", time.Since(start)))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("state", "unavailable"),
			toPayload("error", err.Error()))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("state", "ready"),
		toPayload("timings", timings))
}
