// Package query строит проекцию списка задач для отображения:
// поиск, фильтр и сортировка без изменения исходной коллекции.
package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"islamicTodo/internal/models/task"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterOverdue   Filter = "overdue"
)

type Sort string

const (
	SortCreated  Sort = "created"
	SortPriority Sort = "priority"
	SortDeadline Sort = "deadline"
)

type Params struct {
	Search string
	Filter Filter
	Sort   Sort
}

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterPending, FilterOverdue:
		return f, nil
	default:
		return "", fmt.Errorf("неизвестный фильтр %q", s)
	}
}

func ParseSort(s string) (Sort, error) {
	switch m := Sort(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortCreated, nil
	case SortCreated, SortPriority, SortDeadline:
		return m, nil
	default:
		return "", fmt.Errorf("неизвестная сортировка %q", s)
	}
}

// Apply возвращает новый срез: сначала поиск и фильтр, затем сортировка
func Apply(tasks []task.Task, p Params, now time.Time) []task.Task {
	needle := strings.ToLower(strings.TrimSpace(p.Search))

	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesSearch(t, needle) || !matchesFilter(t, p.Filter, now) {
			continue
		}
		res = append(res, t.Clone())
	}

	sortTasks(res, p.Sort)
	return res
}

func matchesSearch(t task.Task, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

func matchesFilter(t task.Task, f Filter, now time.Time) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterOverdue:
		return t.IsOverdue(now)
	default:
		return true
	}
}

func sortTasks(tasks []task.Task, mode Sort) {
	switch mode {
	case SortPriority:
		slices.SortStableFunc(tasks, func(a, b task.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case SortDeadline:
		slices.SortStableFunc(tasks, compareDeadline)
	default:
		slices.SortStableFunc(tasks, func(a, b task.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}

// задачи без дедлайна идут после всех датированных
func compareDeadline(a, b task.Task) int {
	switch {
	case a.Deadline.IsZero() && b.Deadline.IsZero():
		return 0
	case a.Deadline.IsZero():
		return 1
	case b.Deadline.IsZero():
		return -1
	default:
		return a.Deadline.Compare(b.Deadline)
	}
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

func Summarize(tasks []task.Task, now time.Time) Stats {
	var st Stats
	for _, t := range tasks {
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
	}
	return st
}
