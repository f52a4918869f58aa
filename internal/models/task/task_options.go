package task

import "strings"

// Input - единственная форма данных для создания задачи.
// Значения по умолчанию проставляет хранилище при добавлении.
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Deadline    Date     `json:"deadline"`
	Priority    Priority `json:"priority"`
	Tags        []string `json:"tags"`
}

type InputOption func(*Input)

func NewInput(title string, options ...InputOption) Input {
	in := Input{Title: title}
	for _, opt := range options {
		if opt != nil {
			opt(&in)
		}
	}
	return in
}

func WithDescription(description string) InputOption {
	return func(in *Input) {
		in.Description = description
	}
}

func WithDeadline(deadline Date) InputOption {
	if deadline.IsZero() {
		return nil
	}
	return func(in *Input) {
		in.Deadline = deadline
	}
}

func WithPriority(priority Priority) InputOption {
	if priority == "" {
		return nil
	}
	return func(in *Input) {
		in.Priority = priority
	}
}

func WithTags(tags ...string) InputOption {
	return func(in *Input) {
		in.Tags = append(in.Tags, tags...)
	}
}

// Normalize применяет правила по умолчанию: обрезка заголовка,
// приоритет medium, нормализация тегов
func (in Input) Normalize() (Input, error) {
	out := in
	out.Title = strings.TrimSpace(in.Title)

	priority, err := ParsePriority(string(in.Priority))
	if err != nil {
		return Input{}, err
	}
	out.Priority = priority
	out.Tags = NormalizeTags(in.Tags)

	return out, nil
}
