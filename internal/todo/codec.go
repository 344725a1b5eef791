package todo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	ErrFormat           = errors.New("invalid task format")
	ErrAmbiguousContent = errors.New("content cannot end with a (YYYY-MM-DD) date group")
)

// FormatError describes a stored line that does not fit the grammar.
// It satisfies errors.Is(err, ErrFormat).
type FormatError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(ErrFormat.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Text)
	}
	return b.String()
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

const datePattern = `(\d{4}-\d{2}-\d{2})`

var lineRe = regexp.MustCompile(`^(` + markerCompleted + `|` + markerRemoved + `)?` +
	`\[(.)\] ` +
	`(.+?) ` +
	`\(` + datePattern + `\)` +
	`(?: \(due:` + datePattern + `\))?` +
	`(?: \(` + datePattern + `\))?$`)

// Parse decodes one line. The whole line must match the grammar.
func Parse(line string) (Task, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Task{}, &FormatError{Text: line, Reason: "expected [P] content (YYYY-MM-DD)"}
	}
	t := Task{
		State:    stateFromMarker(m[1]),
		Priority: ParsePriority(m[2]),
		Content:  m[3],
		Tags:     ExtractTags(m[3]),
	}

	created, err := ParseDate(m[4])
	if err != nil {
		return Task{}, &FormatError{Text: line, Reason: "created date", Err: err}
	}
	t.CreatedAt = created

	labeled, err := optionalDate(m[5])
	if err != nil {
		return Task{}, &FormatError{Text: line, Reason: "due date", Err: err}
	}
	unlabeled, err := optionalDate(m[6])
	if err != nil {
		return Task{}, &FormatError{Text: line, Reason: "trailing date", Err: err}
	}

	due, completed, reason := resolveTrailingDates(t.State, labeled, unlabeled)
	if reason != "" {
		return Task{}, &FormatError{Text: line, Reason: reason}
	}
	t.DueTo = due
	t.CompletedAt = completed
	return t, nil
}

// resolveTrailingDates decides which trailing date group is the due date and
// which is the completion date:
//
//	completed, (due:X)?, (Y)   -> due X, completed Y
//	completed, (due:X)?, none  -> error
//	open,      (due:X),  (Y)   -> error
//	open,      none,     (Y)   -> due Y
//	open,      (due:X)?, none  -> due X
func resolveTrailingDates(state State, labeled, unlabeled *time.Time) (due, completed *time.Time, reason string) {
	if state == Completed {
		if unlabeled == nil {
			return nil, nil, "completed task has no completion date"
		}
		return labeled, unlabeled, ""
	}
	if unlabeled == nil {
		return labeled, nil, ""
	}
	if labeled != nil {
		return nil, nil, "completion date on a task that is not completed"
	}
	return unlabeled, nil, ""
}

// Format encodes a task into its line, without the trailing newline.
func Format(t Task) string {
	var b strings.Builder
	b.WriteString(t.State.Marker())
	b.WriteByte('[')
	b.WriteString(t.Priority.String())
	b.WriteString("] ")
	b.WriteString(t.Content)
	b.WriteString(" (")
	b.WriteString(FormatDate(t.CreatedAt))
	b.WriteByte(')')
	if t.DueTo != nil {
		b.WriteString(" (due:")
		b.WriteString(FormatDate(*t.DueTo))
		b.WriteByte(')')
	}
	if t.CompletedAt != nil {
		b.WriteString(" (")
		b.WriteString(FormatDate(*t.CompletedAt))
		b.WriteByte(')')
	}
	return b.String()
}

// Validate reports an error when t would not read back as the same task once
// written, which happens when the content itself ends in date groups.
func Validate(t Task) error {
	line := Format(t)
	back, err := Parse(line)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrAmbiguousContent, t.Content)
	}
	if back.Content != t.Content ||
		back.State != t.State ||
		back.Priority != t.Priority ||
		!back.CreatedAt.Equal(t.CreatedAt) ||
		!sameDate(back.DueTo, t.DueTo) ||
		!sameDate(back.CompletedAt, t.CompletedAt) {
		return fmt.Errorf("%w: %q", ErrAmbiguousContent, t.Content)
	}
	return nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// ExtractTags returns every whitespace-delimited #word token in content, in
// order, duplicates kept.
func ExtractTags(content string) []string {
	var tags []string
	for _, tok := range strings.Fields(content) {
		name, ok := strings.CutPrefix(tok, "#")
		if !ok || !isTagWord(name) {
			continue
		}
		tags = append(tags, name)
	}
	return tags
}

func isTagWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func stateFromMarker(marker string) State {
	switch marker {
	case markerCompleted:
		return Completed
	case markerRemoved:
		return Removed
	default:
		return Pending
	}
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
