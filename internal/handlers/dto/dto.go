package dto

import (
	"time"

	"islamicTodo/internal/models/task"
)

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Deadline    string   `json:"deadline"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}

// ToInput разбирает дедлайн; остальное нормализует хранилище задач
func (r CreateTaskRequest) ToInput() (task.Input, error) {
	deadline, err := task.ParseDate(r.Deadline)
	if err != nil {
		return task.Input{}, err
	}
	return task.NewInput(r.Title,
		task.WithDescription(r.Description),
		task.WithDeadline(deadline),
		task.WithPriority(task.Priority(r.Priority)),
		task.WithTags(r.Tags...),
	), nil
}

type ThemeRequest struct {
	DarkMode *bool `json:"dark_mode"`
}

type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    string    `json:"deadline"`
	Priority    string    `json:"priority"`
	Tags        []string  `json:"tags"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	IsOverdue   bool      `json:"is_overdue"`
}

func FromTask(t task.Task, now time.Time) TaskResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Deadline:    t.Deadline.String(),
		Priority:    string(t.Priority),
		Tags:        tags,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		IsOverdue:   t.IsOverdue(now),
	}
}

func FromTaskList(tasks []task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}
