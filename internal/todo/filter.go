package todo

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Mode is the set of states shown by a listing.
type Mode uint8

const (
	ModePending Mode = 1 << iota
	ModeCompleted
	ModeRemoved

	ModeAll = ModePending | ModeCompleted | ModeRemoved
)

// ParseMode reads a combination of the letters p, c and r.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, r := range strings.TrimSpace(s) {
		switch r {
		case 'p', 'P':
			m |= ModePending
		case 'c', 'C':
			m |= ModeCompleted
		case 'r', 'R':
			m |= ModeRemoved
		default:
			return 0, fmt.Errorf("invalid mode character %q (use p, c, r)", r)
		}
	}
	if m == 0 {
		return 0, fmt.Errorf("empty mode (use p, c, r)")
	}
	return m, nil
}

func (m Mode) Has(s State) bool {
	switch s {
	case Completed:
		return m&ModeCompleted != 0
	case Removed:
		return m&ModeRemoved != 0
	default:
		return m&ModePending != 0
	}
}

func (m Mode) String() string {
	var b strings.Builder
	if m&ModePending != 0 {
		b.WriteByte('p')
	}
	if m&ModeCompleted != 0 {
		b.WriteByte('c')
	}
	if m&ModeRemoved != 0 {
		b.WriteByte('r')
	}
	return b.String()
}

// Query narrows tasks. Unset fields match everything; set fields are ANDed.
type Query struct {
	Keyword     string
	Tag         string
	MinPriority *Priority
	DueBefore   *time.Time
}

func (q Query) Matches(t Task) bool {
	if q.Keyword != "" && !strings.Contains(t.Content, q.Keyword) {
		return false
	}
	if q.Tag != "" && !t.HasTag(q.Tag) {
		return false
	}
	if q.MinPriority != nil && t.Priority < *q.MinPriority {
		return false
	}
	if q.DueBefore != nil {
		if t.DueTo == nil || t.DueTo.After(*q.DueBefore) {
			return false
		}
	}
	return true
}

// Matches reports whether t is visible in mode and satisfies q.
func Matches(t Task, mode Mode, q Query) bool {
	return mode.Has(t.State) && q.Matches(t)
}

type SortKey int

const (
	SortNone SortKey = iota
	SortPriority
	SortDue
)

func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n", "none":
		return SortNone, nil
	case "p", "priority":
		return SortPriority, nil
	case "d", "due":
		return SortDue, nil
	default:
		return SortNone, fmt.Errorf("invalid sort key %q (use priority or due)", s)
	}
}

func (k SortKey) String() string {
	switch k {
	case SortPriority:
		return "priority"
	case SortDue:
		return "due"
	default:
		return "none"
	}
}

// Order returns the file indices of the tasks kept by keep, sorted by key.
// Ties keep file order.
func Order(tasks []Task, keep func(Task) bool, key SortKey) []int {
	var idx []int
	for i, t := range tasks {
		if keep == nil || keep(t) {
			idx = append(idx, i)
		}
	}
	switch key {
	case SortPriority:
		sort.SliceStable(idx, func(a, b int) bool {
			return tasks[idx[a]].Priority > tasks[idx[b]].Priority
		})
	case SortDue:
		sort.SliceStable(idx, func(a, b int) bool {
			return dueAfter(tasks[idx[a]].DueTo, tasks[idx[b]].DueTo)
		})
	}
	return idx
}

// dueAfter orders later due dates first and missing ones last.
func dueAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
