// Package todo holds the task model, the line codec and the filter, sort and
// selection rules used by the command line.
package todo

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type State int

const (
	Pending State = iota
	Completed
	Removed
)

const (
	markerCompleted = "✓ "
	markerRemoved   = "✗ "
)

// Marker returns the line prefix for the state. Pending has none.
func (s State) Marker() string {
	switch s {
	case Completed:
		return markerCompleted
	case Removed:
		return markerRemoved
	default:
		return ""
	}
}

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Removed:
		return "removed"
	default:
		return "pending"
	}
}

// Priority orders as A > B > C > O, so the zero value is the lowest.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityC
	PriorityB
	PriorityA
)

func (p Priority) String() string {
	switch p {
	case PriorityA:
		return "A"
	case PriorityB:
		return "B"
	case PriorityC:
		return "C"
	default:
		return "O"
	}
}

// PriorityFromRune maps a letter to a priority. Anything unknown is O.
func PriorityFromRune(r rune) Priority {
	switch r {
	case 'A', 'a':
		return PriorityA
	case 'B', 'b':
		return PriorityB
	case 'C', 'c':
		return PriorityC
	default:
		return PriorityNone
	}
}

// ParsePriority reads the first character of s. Empty input is O.
func ParsePriority(s string) Priority {
	s = strings.TrimSpace(s)
	for _, r := range s {
		return PriorityFromRune(r)
	}
	return PriorityNone
}

type Task struct {
	State       State
	Priority    Priority
	Content     string
	CreatedAt   time.Time
	DueTo       *time.Time
	CompletedAt *time.Time
	Tags        []string
}

// New builds a pending task created on the calendar day of today.
func New(priority Priority, content string, due *time.Time, today time.Time) Task {
	content = strings.TrimSpace(content)
	return Task{
		State:     Pending,
		Priority:  priority,
		Content:   content,
		CreatedAt: dateOf(today),
		DueTo:     due,
		Tags:      ExtractTags(content),
	}
}

// Complete marks the task done and stamps the completion date.
func (t *Task) Complete(on time.Time) {
	d := dateOf(on)
	t.State = Completed
	t.CompletedAt = &d
}

func (t *Task) Remove() {
	t.State = Removed
}

// SetContent replaces the content and re-derives the tags from it.
func (t *Task) SetContent(content string) {
	t.Content = content
	t.Tags = ExtractTags(content)
}

func (t *Task) SetDue(due *time.Time) {
	if due == nil {
		t.DueTo = nil
		return
	}
	d := dateOf(*due)
	t.DueTo = &d
}

// Overdue reports whether a pending task's due date is already behind today.
func (t *Task) Overdue(today time.Time) bool {
	return t.DueTo != nil && dateOf(today).After(*t.DueTo)
}

// FinishedLate reports whether a completed task was completed after its due date.
func (t *Task) FinishedLate() bool {
	return t.DueTo != nil && t.CompletedAt != nil && t.CompletedAt.After(*t.DueTo)
}

// HasTag reports exact membership; a leading '#' on tag is ignored.
func (t *Task) HasTag(tag string) bool {
	tag = strings.TrimPrefix(tag, "#")
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// DeleteRows returns tasks without the given file rows. Rows may repeat and come
// in any order.
func DeleteRows(tasks []Task, rows []int) []Task {
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		drop[r] = true
	}
	out := make([]Task, 0, len(tasks))
	for i, t := range tasks {
		if drop[i] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
