package todo

import (
	"strconv"
	"strings"
)

// Entry is one row of a listing: the id shown to the user and the file row it
// stands for.
type Entry struct {
	ID  int
	Row int
}

// Selection maps shown ids to file rows for one listing. It is built fresh for
// every command and never stored.
type Selection struct {
	order []int
	rows  map[int]int
}

// NewSelection orders the tasks kept by keep and numbers them 1..n.
func NewSelection(tasks []Task, keep func(Task) bool, key SortKey) *Selection {
	order := Order(tasks, keep, key)
	rows := make(map[int]int, len(order))
	for i, row := range order {
		rows[i+1] = row
	}
	return &Selection{order: order, rows: rows}
}

// PendingCandidates keeps open tasks that match q.
func PendingCandidates(q Query) func(Task) bool {
	return func(t Task) bool { return t.State == Pending && q.Matches(t) }
}

// ModeCandidates keeps tasks visible in mode that match q.
func ModeCandidates(mode Mode, q Query) func(Task) bool {
	return func(t Task) bool { return Matches(t, mode, q) }
}

func (s *Selection) Len() int {
	return len(s.order)
}

// Entries lists rows in display order: the largest id first.
func (s *Selection) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, Entry{ID: i + 1, Row: s.order[i]})
	}
	return out
}

// Lookup returns the file row for a shown id.
func (s *Selection) Lookup(id int) (int, bool) {
	row, ok := s.rows[id]
	return row, ok
}

// Resolve maps ids to rows. Unknown ids are returned separately and do not stop
// the rest; an id given twice resolves once.
func (s *Selection) Resolve(ids []int) (rows []int, invalid []int) {
	seen := map[int]bool{}
	for _, id := range ids {
		row, ok := s.Lookup(id)
		if !ok {
			invalid = append(invalid, id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, row)
	}
	return rows, invalid
}

// ParseIDs splits an input line into ids. Tokens that are not positive integers
// come back in bad.
func ParseIDs(line string) (ids []int, bad []string) {
	for _, tok := range strings.Fields(line) {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 {
			bad = append(bad, tok)
			continue
		}
		ids = append(ids, n)
	}
	return ids, bad
}
