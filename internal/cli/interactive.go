package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/amirbrooks/todotxt/internal/todo"
)

// selectFlags parses the query flags of an interactive command. Delete also
// takes a display mode; the others only ever select pending tasks.
func (a *App) selectFlags(s *session, name string, args []string, withMode bool) (func(todo.Task) bool, todo.SortKey, bool) {
	var q queryFlags
	if _, ok := a.parseCommand(name, args, nil, func(fs *flag.FlagSet) {
		addQueryFlags(fs, &q, withMode, s.modeDefault("pcr"), s.sortDefault())
	}); !ok {
		return nil, 0, false
	}
	query, err := q.query()
	if err != nil {
		a.usageError(s, name, err)
		return nil, 0, false
	}
	key, err := q.sortKey()
	if err != nil {
		a.usageError(s, name, err)
		return nil, 0, false
	}
	if !withMode {
		return todo.PendingCandidates(query), key, true
	}
	mode, err := q.displayMode()
	if err != nil {
		a.usageError(s, name, err)
		return nil, 0, false
	}
	return todo.ModeCandidates(mode, query), key, true
}

// chooseRows lists the candidates, reads a line of ids and resolves them.
// Unknown ids are reported one by one; the rest still resolve. No rows means
// nothing should be written.
func (a *App) chooseRows(s *session, tasks []todo.Task, sel *todo.Selection, verb string) ([]int, error) {
	if sel.Len() == 0 {
		a.notice(s, "no matching tasks")
		return nil, nil
	}
	today := a.now()
	for _, e := range sel.Entries() {
		fmt.Fprintf(a.out, "%3d %s\n", e.ID, s.style.task(tasks[e.Row], today))
	}
	fmt.Fprintf(a.out, "%s Tasks to %s: (e.g. 1 3 4)\n", s.style.askMark(), verb)

	line, err := a.prompt(s)
	if err != nil {
		return nil, err
	}
	ids, bad := todo.ParseIDs(line)
	for _, tok := range bad {
		a.notice(s, "invalid task id: %s", tok)
	}
	if len(ids) == 0 {
		if len(bad) == 0 {
			a.notice(s, "no ids entered")
		}
		return nil, nil
	}
	rows, invalid := sel.Resolve(ids)
	for _, id := range invalid {
		a.notice(s, "invalid task id: %d", id)
	}
	return rows, nil
}

// prompt shows the input marker and reads one line. EOF counts as an empty line.
func (a *App) prompt(s *session) (string, error) {
	fmt.Fprintf(a.out, "%s ", s.style.inputMark())
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// runSelection drives one interactive command: load, list, read ids, apply,
// and rewrite the file when at least one id resolved.
func (a *App) runSelection(s *session, name, verb string, args []string, withMode bool, apply func(tasks []todo.Task, sel *todo.Selection, rows []int) ([]todo.Task, error)) int {
	keep, key, ok := a.selectFlags(s, name, args, withMode)
	if !ok {
		return ExitUsage
	}
	tasks, code, ok := a.loadTasks(s, name)
	if !ok {
		return code
	}
	sel := todo.NewSelection(tasks, keep, key)
	rows, err := a.chooseRows(s, tasks, sel, verb)
	if err != nil {
		return a.fail(s, name, err)
	}
	if len(rows) == 0 {
		return ExitOK
	}
	tasks, err = apply(tasks, sel, rows)
	if err != nil {
		return a.fail(s, name, err)
	}
	if err := s.list.Save(tasks); err != nil {
		return a.fail(s, name, err)
	}
	s.log.Debug("rewrote task list", "file", s.list.Path, "count", len(tasks), "changed", len(rows))
	return ExitOK
}

func (a *App) cmdComplete(s *session, args []string) int {
	return a.runSelection(s, "done", "complete", args, false, func(tasks []todo.Task, _ *todo.Selection, rows []int) ([]todo.Task, error) {
		now := a.now()
		for _, row := range rows {
			tasks[row].Complete(now)
		}
		a.info(s, "Completed %s", plural(len(rows), "task"))
		return tasks, nil
	})
}

func (a *App) cmdRemove(s *session, args []string) int {
	return a.runSelection(s, "rm", "remove", args, false, func(tasks []todo.Task, _ *todo.Selection, rows []int) ([]todo.Task, error) {
		for _, row := range rows {
			tasks[row].Remove()
		}
		a.info(s, "Removed %s", plural(len(rows), "task"))
		return tasks, nil
	})
}

func (a *App) cmdDelete(s *session, args []string) int {
	return a.runSelection(s, "delete", "delete", args, true, func(tasks []todo.Task, _ *todo.Selection, rows []int) ([]todo.Task, error) {
		a.info(s, "Deleted %s", plural(len(rows), "task"))
		return todo.DeleteRows(tasks, rows), nil
	})
}

func (a *App) cmdModify(s *session, args []string) int {
	return a.runSelection(s, "modify", "modify", args, false, func(tasks []todo.Task, sel *todo.Selection, rows []int) ([]todo.Task, error) {
		ids := idsByRow(sel)
		for _, row := range rows {
			if err := a.editTask(s, ids[row], &tasks[row]); err != nil {
				return nil, err
			}
		}
		return tasks, nil
	})
}

// editTask asks which field to change and replaces only that one.
func (a *App) editTask(s *session, id int, t *todo.Task) error {
	fmt.Fprintf(a.out, "%s Field to change for task %d?\n", s.style.askMark(), id)
	fmt.Fprintf(a.out, "%s [P]riority, [C]ontent or [D]ue date\n", s.style.askMark())
	field, err := a.prompt(s)
	if err != nil {
		return err
	}

	switch strings.ToLower(field) {
	case "p", "priority":
		fmt.Fprintf(a.out, "%s Priority: (A/B/C/O)\n", s.style.askMark())
		answer, err := a.prompt(s)
		if err != nil {
			return err
		}
		t.Priority = todo.ParsePriority(answer)
	case "c", "content":
		fmt.Fprintf(a.out, "%s Content:\n", s.style.askMark())
		answer, err := a.prompt(s)
		if err != nil {
			return err
		}
		if answer == "" {
			a.notice(s, "no content entered")
			return nil
		}
		edited := *t
		edited.SetContent(answer)
		if err := todo.Validate(edited); err != nil {
			a.notice(s, "%v", err)
			return nil
		}
		*t = edited
	case "d", "due":
		fmt.Fprintf(a.out, "%s Due date: (YYYY-MM-DD, empty to clear)\n", s.style.askMark())
		answer, err := a.prompt(s)
		if err != nil {
			return err
		}
		edited := *t
		if answer == "" {
			edited.SetDue(nil)
		} else {
			d, err := todo.ParseDate(answer)
			if err != nil {
				a.notice(s, "invalid due date: %s", answer)
				return nil
			}
			edited.SetDue(&d)
		}
		if err := todo.Validate(edited); err != nil {
			a.notice(s, "%v", err)
			return nil
		}
		*t = edited
	default:
		a.notice(s, "invalid field: %s", field)
	}
	return nil
}

func idsByRow(sel *todo.Selection) map[int]int {
	out := make(map[int]int, sel.Len())
	for _, e := range sel.Entries() {
		out[e.Row] = e.ID
	}
	return out
}
