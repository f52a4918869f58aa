package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"islamicTodo/internal/models/task"
	"islamicTodo/internal/prayer"
	"islamicTodo/internal/query"
	"islamicTodo/internal/quotes"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	title     lipgloss.Style
	muted     lipgloss.Style
	done      lipgloss.Style
	overdue   lipgloss.Style
	tag       lipgloss.Style
	warning   lipgloss.Style
	priority  map[task.Priority]lipgloss.Style
	quote     lipgloss.Style
	prayerBox lipgloss.Style
}

func newPalette(dark bool) palette {
	fg, muted, accent := lipgloss.Color("235"), lipgloss.Color("244"), lipgloss.Color("28")
	if dark {
		fg, muted, accent = lipgloss.Color("252"), lipgloss.Color("241"), lipgloss.Color("42")
	}

	return palette{
		title:   lipgloss.NewStyle().Foreground(fg),
		muted:   lipgloss.NewStyle().Foreground(muted),
		done:    lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		overdue: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		tag:     lipgloss.NewStyle().Foreground(accent),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		priority: map[task.Priority]lipgloss.Style{
			task.PriorityLow:    lipgloss.NewStyle().Foreground(muted),
			task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
			task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
			task.PriorityUrgent: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		},
		quote: lipgloss.NewStyle().Italic(true).Foreground(accent).
			BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(accent).PaddingLeft(1),
		prayerBox: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
	}
}

// shortID - последние 8 символов: у UUIDv7 начало совпадает у задач одной минуты
func shortID(id task.ID) string {
	s := id.String()
	if len(s) > 8 {
		return s[len(s)-8:]
	}
	return s
}

func (p palette) taskLine(t task.Task, now time.Time) string {
	box := "[ ]"
	title := p.title.Render(t.Title)
	if t.Completed {
		box = "[x]"
		title = p.done.Render(t.Title)
	}

	parts := []string{
		box,
		p.muted.Render(shortID(t.ID)),
		title,
		p.priority[t.Priority].Render(string(t.Priority)),
	}

	if !t.Deadline.IsZero() {
		due := "до " + t.Deadline.String()
		if t.IsOverdue(now) {
			parts = append(parts, p.overdue.Render(due+" просрочено"))
		} else {
			parts = append(parts, p.muted.Render(due))
		}
	}
	for _, tag := range t.Tags {
		parts = append(parts, p.tag.Render("#"+tag))
	}

	line := strings.Join(parts, " ")
	if t.Description != "" {
		line += "\n    " + p.muted.Render(t.Description)
	}
	return line
}

func (p palette) renderTasks(w io.Writer, tasks []task.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, p.muted.Render("Задач нет"))
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, p.taskLine(t, now))
	}
}

func (p palette) renderStats(w io.Writer, st query.Stats) {
	fmt.Fprintf(w, "всего: %d  выполнено: %d  в работе: %d  %s\n",
		st.Total, st.Completed, st.Pending,
		p.overdue.Render(fmt.Sprintf("просрочено: %d", st.Overdue)))
}

func (p palette) renderWarning(w io.Writer, warning error) {
	if warning == nil {
		return
	}
	fmt.Fprintln(w, p.warning.Render("предупреждение: "+warning.Error()))
}

func (p palette) renderQuote(w io.Writer, q quotes.Quote) {
	fmt.Fprintln(w, p.quote.Render(q.String()))
}

func (p palette) renderPrayer(w io.Writer, t prayer.Timings) {
	lines := make([]string, 0, len(t.Times)+1)
	header := t.City + ", " + t.Country
	if t.Date != "" {
		header += " - " + t.Date
	}
	lines = append(lines, header)
	for _, pt := range t.Times {
		lines = append(lines, fmt.Sprintf("%-10s %s", pt.Name, pt.At))
	}
	fmt.Fprintln(w, p.prayerBox.Render(strings.Join(lines, "\n")))
}
