package query_test

import (
	"testing"
	"time"

	"islamicTodo/internal/models/task"
	"islamicTodo/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixture() []task.Task {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []task.Task{
		{ID: "1", Title: "Fajr reminder", Priority: task.PriorityHigh, CreatedAt: base},
		{ID: "2", Title: "Pay zakat", Description: "Before Ramadan", Priority: task.PriorityUrgent,
			Deadline: task.NewDate(2020, 1, 1), CreatedAt: base.Add(time.Hour)},
		{ID: "3", Title: "Read Quran", Description: "Surah Al-Kahf on friday", Priority: task.PriorityMedium,
			Deadline: task.NewDate(2024, 7, 1), Completed: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "4", Title: "Visit family", Priority: task.PriorityLow,
			Deadline: task.NewDate(2024, 6, 15), CreatedAt: base.Add(3 * time.Hour)},
		{ID: "5", Title: "Buy dates", Priority: task.PriorityHigh,
			Deadline: task.NewDate(2024, 5, 20), Completed: true, CreatedAt: base.Add(4 * time.Hour)},
	}
}

func ids(tasks []task.Task) []task.ID {
	res := make([]task.ID, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}

func TestApply_Filter(t *testing.T) {
	tests := []struct {
		name     string
		filter   query.Filter
		expected []task.ID
	}{
		{name: "all", filter: query.FilterAll, expected: []task.ID{"5", "4", "3", "2", "1"}},
		{name: "empty means all", filter: "", expected: []task.ID{"5", "4", "3", "2", "1"}},
		{name: "completed", filter: query.FilterCompleted, expected: []task.ID{"5", "3"}},
		{name: "pending", filter: query.FilterPending, expected: []task.ID{"4", "2", "1"}},
		// "5" тоже с прошедшим дедлайном, но выполнена
		{name: "overdue", filter: query.FilterOverdue, expected: []task.ID{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := query.Apply(fixture(), query.Params{Filter: tt.filter}, now)
			assert.Equal(t, tt.expected, ids(res))
		})
	}
}

func TestApply_Search(t *testing.T) {
	tests := []struct {
		name     string
		search   string
		expected []task.ID
	}{
		{name: "title case-insensitive", search: "QURAN", expected: []task.ID{"3"}},
		{name: "description", search: "ramadan", expected: []task.ID{"2"}},
		{name: "surrounding spaces", search: "  kahf ", expected: []task.ID{"3"}},
		{name: "no match", search: "hajj", expected: []task.ID{}},
		{name: "empty matches all", search: "", expected: []task.ID{"5", "4", "3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := query.Apply(fixture(), query.Params{Search: tt.search}, now)
			assert.Equal(t, tt.expected, ids(res))
		})
	}
}

func TestApply_SearchAndFilterCombine(t *testing.T) {
	res := query.Apply(fixture(), query.Params{Search: "r", Filter: query.FilterPending, Sort: query.SortPriority}, now)
	// "r" есть в Fajr reminder, Pay zakat (Ramadan) и Read Quran (выполнена)
	assert.Equal(t, []task.ID{"2", "1"}, ids(res))
}

func TestApply_SortPriority(t *testing.T) {
	res := query.Apply(fixture(), query.Params{Sort: query.SortPriority}, now)
	assert.Equal(t, []task.ID{"2", "1", "5", "3", "4"}, ids(res))

	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Priority.Rank(), res[i].Priority.Rank())
	}
}

func TestApply_SortPriorityIsStable(t *testing.T) {
	tasks := []task.Task{
		{ID: "a", Priority: task.PriorityHigh},
		{ID: "b", Priority: task.PriorityLow},
		{ID: "c", Priority: task.PriorityHigh},
		{ID: "d", Priority: task.PriorityHigh},
	}
	res := query.Apply(tasks, query.Params{Sort: query.SortPriority}, now)
	assert.Equal(t, []task.ID{"a", "c", "d", "b"}, ids(res))
}

func TestApply_SortDeadlineMissingLast(t *testing.T) {
	res := query.Apply(fixture(), query.Params{Sort: query.SortDeadline}, now)
	assert.Equal(t, []task.ID{"2", "5", "4", "3", "1"}, ids(res))

	last := res[len(res)-1]
	assert.True(t, last.Deadline.IsZero())
}

func TestApply_SortDeadlineStableAmongEquals(t *testing.T) {
	tasks := []task.Task{
		{ID: "none-1"},
		{ID: "late", Deadline: task.NewDate(2024, 2, 1)},
		{ID: "early-1", Deadline: task.NewDate(2024, 1, 1)},
		{ID: "none-2"},
		{ID: "early-2", Deadline: task.NewDate(2024, 1, 1)},
	}
	res := query.Apply(tasks, query.Params{Sort: query.SortDeadline}, now)
	assert.Equal(t, []task.ID{"early-1", "early-2", "late", "none-1", "none-2"}, ids(res))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	tasks := fixture()
	tasks[0].Tags = []string{"salah"}
	before := fixture()
	before[0].Tags = []string{"salah"}

	res := query.Apply(tasks, query.Params{Sort: query.SortDeadline}, now)
	require.NotEmpty(t, res)
	res[0].Title = "changed"
	for i := range res {
		if res[i].ID == "1" {
			res[i].Tags[0] = "changed"
		}
	}

	assert.Equal(t, before, tasks)
}

func TestApply_Empty(t *testing.T) {
	res := query.Apply(nil, query.Params{Filter: query.FilterOverdue, Sort: query.SortDeadline}, now)
	assert.NotNil(t, res)
	assert.Empty(t, res)
}

func TestParseFilter(t *testing.T) {
	f, err := query.ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, query.FilterAll, f)

	f, err = query.ParseFilter(" Overdue ")
	require.NoError(t, err)
	assert.Equal(t, query.FilterOverdue, f)

	_, err = query.ParseFilter("archived")
	assert.Error(t, err)
}

func TestParseSort(t *testing.T) {
	s, err := query.ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, query.SortCreated, s)

	s, err = query.ParseSort("deadline")
	require.NoError(t, err)
	assert.Equal(t, query.SortDeadline, s)

	_, err = query.ParseSort("title")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	st := query.Summarize(fixture(), now)
	assert.Equal(t, query.Stats{Total: 5, Completed: 2, Pending: 3, Overdue: 1}, st)

	assert.Equal(t, query.Stats{}, query.Summarize(nil, now))
}
