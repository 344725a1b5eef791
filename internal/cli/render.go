package cli

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/amirbrooks/todotxt/internal/todo"
)

const markText = "==>"

// palette holds the styles for task rows and message markers. Styles come
// from a renderer bound to the output stream, so pipes get plain text.
type palette struct {
	marker   lipgloss.Style
	priority lipgloss.Style
	created  lipgloss.Style
	dueSoon  lipgloss.Style
	overdue  lipgloss.Style
	onTime   lipgloss.Style
	late     lipgloss.Style
	done     lipgloss.Style
	faint    lipgloss.Style

	errStyle   lipgloss.Style
	askStyle   lipgloss.Style
	inputStyle lipgloss.Style
}

func newPalette(w io.Writer, color bool) *palette {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}
	return &palette{
		marker:   fg("2"),
		priority: fg("3"),
		created:  fg("4"),
		dueSoon:  fg("6"),
		overdue:  fg("1"),
		onTime:   fg("2"),
		late:     fg("5"),
		done:     fg("2"),
		faint:    r.NewStyle().Faint(true),

		errStyle:   fg("1"),
		askStyle:   fg("6"),
		inputStyle: fg("2"),
	}
}

func (p *palette) errMark() string   { return p.errStyle.Render(markText) }
func (p *palette) infoMark() string  { return p.askStyle.Render(markText) }
func (p *palette) askMark() string   { return p.askStyle.Render(markText) }
func (p *palette) inputMark() string { return p.inputStyle.Render(markText) }

// task renders one row in the file's own layout with colour hints: overdue and
// late due dates stand out, removed rows are faint.
func (p *palette) task(t todo.Task, today time.Time) string {
	created := todo.FormatDate(t.CreatedAt)

	if t.State == todo.Removed {
		var b strings.Builder
		b.WriteString(p.faint.Render(t.State.Marker() + "[" + t.Priority.String() + "] " + t.Content + " (" + created + ")"))
		if t.DueTo != nil {
			b.WriteString(" ")
			b.WriteString(p.faint.Render("(due:" + todo.FormatDate(*t.DueTo) + ")"))
		}
		return b.String()
	}

	var b strings.Builder
	if m := t.State.Marker(); m != "" {
		b.WriteString(p.marker.Render(m))
	}
	b.WriteString("[")
	b.WriteString(p.priority.Render(t.Priority.String()))
	b.WriteString("] ")
	b.WriteString(t.Content)
	b.WriteString(" (")
	b.WriteString(p.created.Render(created))
	b.WriteString(")")
	if t.DueTo != nil {
		b.WriteString(" (due:")
		b.WriteString(p.dueStyle(t, today).Render(todo.FormatDate(*t.DueTo)))
		b.WriteString(")")
	}
	if t.CompletedAt != nil {
		b.WriteString(" (")
		b.WriteString(p.done.Render(todo.FormatDate(*t.CompletedAt)))
		b.WriteString(")")
	}
	return b.String()
}

func (p *palette) dueStyle(t todo.Task, today time.Time) lipgloss.Style {
	if t.State == todo.Completed {
		if t.FinishedLate() {
			return p.late
		}
		return p.onTime
	}
	if t.Overdue(today) {
		return p.overdue
	}
	return p.dueSoon
}
