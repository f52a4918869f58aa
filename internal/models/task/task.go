package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxTags - максимальное количество тегов у одной задачи
const MaxTags = 5

const DateLayout = "2006-01-02"

var ErrInvalidPriority = errors.New("неизвестный приоритет")
var ErrInvalidDate = errors.New("неверный формат даты")

type Task struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    Date      `json:"deadline"`
	Priority    Priority  `json:"priority"`
	Tags        []string  `json:"tags"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsOverdue - дедлайн задан, уже прошёл, а задача не выполнена
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.Deadline.IsZero() {
		return false
	}
	return t.Deadline.Time().Before(now)
}

// Clone возвращает копию задачи без общих срезов
func (t Task) Clone() Task {
	c := t
	c.Tags = make([]string, len(t.Tags))
	copy(c.Tags, t.Tags)
	return c
}

// ID задачи. В старых данных браузера id был числом (Date.now()),
// поэтому при чтении принимаем и число, и строку.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id должен быть строкой или числом: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// legacyCreatedAt восстанавливает время создания из числового id старого формата
func (id ID) legacyCreatedAt() (time.Time, bool) {
	ms, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank - порядок приоритета, чем больше тем важнее
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Date - календарная дата без времени, хранится как полночь UTC
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		// браузерный input иногда отдаёт полный ISO timestamp
		full, errFull := time.Parse(time.RFC3339, s)
		if errFull != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		t = full.UTC()
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Time() time.Time {
	return d.t
}

func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NormalizeTags обрезает пробелы, убирает пустые и повторяющиеся теги
// и оставляет не больше MaxTags в исходном порядке
func NormalizeTags(tags []string) []string {
	res := make([]string, 0, MaxTags)
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		if len(res) == MaxTags {
			break
		}
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		res = append(res, tag)
	}
	return res
}

// UnmarshalJSON заполняет значения по умолчанию для записей старого формата
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Priority == "" {
		raw.Priority = PriorityMedium
	}
	if raw.Tags == nil {
		raw.Tags = []string{}
	}
	if raw.CreatedAt.IsZero() {
		if createdAt, ok := raw.ID.legacyCreatedAt(); ok {
			raw.CreatedAt = createdAt
		}
	}

	*t = Task(raw)
	return nil
}
