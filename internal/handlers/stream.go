package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"islamicTodo/internal/handlers/dto"
	"islamicTodo/internal/logger"
	"islamicTodo/internal/models/task"

	"go.uber.org/zap"
)

const streamBuffer = 8

// StreamTasks отдаёт server-sent events: текущий список сразу,
// затем по событию "tasks" на каждую мутацию хранилища
func (s *TaskHandler) StreamTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN: Подписка на поток задач")

	rc := http.NewResponseController(w)
	// соединение живёт дольше write_timeout сервера
	_ = rc.SetWriteDeadline(time.Time{})

	updates := make(chan []task.Task, streamBuffer)
	unsubscribe := s.TaskService.Subscribe(func(tasks []task.Task) {
		// слушатель вызывается синхронно из хранилища, блокировать его нельзя
		select {
		case updates <- tasks:
		default:
			logger.Warn("HTTP: Клиент потока не успевает, событие пропущено")
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := s.writeEvent(w, rc, s.TaskService.Tasks()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			logger.Info("HTTP: Клиент отключился от потока задач")
			return
		case tasks := <-updates:
			if err := s.writeEvent(w, rc, tasks); err != nil {
				logger.Warn("HTTP: Ошибка записи в поток", zap.Error(err))
				return
			}
		}
	}
}

func (s *TaskHandler) writeEvent(w http.ResponseWriter, rc *http.ResponseController, tasks []task.Task) error {
	data, err := json.Marshal(dto.FromTaskList(tasks, s.clock()))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: tasks\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}
