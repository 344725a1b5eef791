package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/amirbrooks/todotxt/internal/store"
	"github.com/amirbrooks/todotxt/internal/todo"
)

func (a *App) cmdAdd(s *session, args []string) int {
	var priority, due string
	fs, ok := a.parseCommand("add", args, map[string]bool{"--due": true, "-d": true}, func(fs *flag.FlagSet) {
		fs.StringVar(&priority, "priority", "O", "Priority (A|B|C|O)")
		fs.StringVar(&priority, "p", "O", "Shorthand for --priority")
		fs.StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
		fs.StringVar(&due, "d", "", "Shorthand for --due")
	})
	if !ok {
		return ExitUsage
	}
	content := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if content == "" {
		return a.usage(`add "<content>" [--priority A|B|C|O] [--due YYYY-MM-DD]`)
	}
	if strings.ContainsAny(content, "\r\n") {
		return a.usageError(s, "add", errors.New("content must be a single line"))
	}

	task := todo.New(todo.ParsePriority(priority), content, nil, a.now())
	if strings.TrimSpace(due) != "" {
		d, err := todo.ParseDate(due)
		if err != nil {
			return a.usageError(s, "add", fmt.Errorf("invalid due date %q: want YYYY-MM-DD", due))
		}
		task.SetDue(&d)
	}
	if err := todo.Validate(task); err != nil {
		return a.usageError(s, "add", err)
	}

	if err := s.list.Append(task); err != nil {
		return a.fail(s, "add", err)
	}
	s.log.Debug("appended task", "file", s.list.Path)
	a.info(s, "Added: %s", todo.Format(task))
	return ExitOK
}

func (a *App) cmdList(s *session, args []string) int {
	var q queryFlags
	if _, ok := a.parseCommand("ls", args, nil, func(fs *flag.FlagSet) {
		addQueryFlags(fs, &q, true, s.modeDefault("p"), s.sortDefault())
	}); !ok {
		return ExitUsage
	}
	mode, query, key, err := q.resolve()
	if err != nil {
		return a.usageError(s, "ls", err)
	}

	tasks, code, ok := a.loadTasks(s, "ls")
	if !ok {
		return code
	}
	sel := todo.NewSelection(tasks, todo.ModeCandidates(mode, query), key)
	if sel.Len() == 0 && !s.gf.JSON {
		if !s.gf.Quiet {
			a.notice(s, "no matching tasks")
		}
		return ExitOK
	}
	return a.printEntries(s, tasks, sel)
}

// printEntries writes a listing in the output format chosen by the global flags.
func (a *App) printEntries(s *session, tasks []todo.Task, sel *todo.Selection) int {
	entries := sel.Entries()

	if s.gf.JSON {
		records := make([]store.Record, 0, len(entries))
		for _, e := range entries {
			records = append(records, store.NewRecord(e.ID, tasks[e.Row]))
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"tasks": records}); err != nil {
			return a.fail(s, "ls", err)
		}
		return ExitOK
	}

	if s.gf.Plain {
		w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tST\tPRI\tCREATED\tDUE\tDONE\tCONTENT")
		for _, e := range entries {
			t := tasks[e.Row]
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.ID, stateAbbrev(t.State), t.Priority, todo.FormatDate(t.CreatedAt),
				dateOrDash(t.DueTo), dateOrDash(t.CompletedAt), t.Content)
		}
		_ = w.Flush()
		return ExitOK
	}

	today := a.now()
	for _, e := range entries {
		fmt.Fprintf(a.out, "%3d %s\n", e.ID, s.style.task(tasks[e.Row], today))
	}
	return ExitOK
}

func (a *App) cmdExport(s *session, args []string) int {
	var q queryFlags
	var format, outDir string
	if _, ok := a.parseCommand("export", args, map[string]bool{"--format": true, "--out": true}, func(fs *flag.FlagSet) {
		addQueryFlags(fs, &q, true, "pcr", s.sortDefault())
		fs.StringVar(&format, "format", "json", "json|ndjson|yaml|toml")
		fs.StringVar(&outDir, "out", "", "Export directory (default: exports next to the task list)")
	}); !ok {
		return ExitUsage
	}
	mode, query, key, err := q.resolve()
	if err != nil {
		return a.usageError(s, "export", err)
	}
	format, err = store.NormalizeFormat(format)
	if err != nil {
		return a.usageError(s, "export", err)
	}

	tasks, code, ok := a.loadTasks(s, "export")
	if !ok {
		return code
	}
	sel := todo.NewSelection(tasks, todo.ModeCandidates(mode, query), key)
	records := make([]store.Record, 0, sel.Len())
	for _, e := range sel.Entries() {
		records = append(records, store.NewRecord(e.ID, tasks[e.Row]))
	}

	dir := s.cfg.ResolveExportDir(outDir, s.list.Path)
	path, err := store.WriteExport(dir, "tasks", format, records)
	if err != nil {
		return a.fail(s, "export", err)
	}
	s.log.Debug("wrote export", "path", path, "format", format, "count", len(records))
	if !s.gf.Quiet {
		fmt.Fprintln(a.out, "Wrote", plural(len(records), "task"), "to:", path)
	}
	return ExitOK
}

func (a *App) cmdConfig(s *session, args []string) int {
	if len(args) == 0 || args[0] != "show" {
		return a.usage("config show")
	}
	source := s.cfg.Source
	if source == "" {
		source = "(defaults)"
	}
	sortKey := s.sortDefault()
	if sortKey == "" {
		sortKey = "none"
	}
	payload := map[string]any{
		"file":       s.list.Path,
		"config":     source,
		"sort":       sortKey,
		"mode":       s.modeDefault("p"),
		"color":      s.cfg.ColorEnabled(),
		"export_dir": s.cfg.ResolveExportDir("", s.list.Path),
	}

	if s.gf.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
		return ExitOK
	}

	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	if s.gf.Plain {
		fmt.Fprintln(w, "KEY\tVALUE")
	}
	for _, k := range []string{"file", "config", "sort", "mode", "color", "export_dir"} {
		fmt.Fprintf(w, "%s\t%v\n", k, payload[k])
	}
	_ = w.Flush()
	return ExitOK
}

func (q *queryFlags) resolve() (todo.Mode, todo.Query, todo.SortKey, error) {
	mode, err := q.displayMode()
	if err != nil {
		return 0, todo.Query{}, 0, err
	}
	query, err := q.query()
	if err != nil {
		return 0, todo.Query{}, 0, err
	}
	key, err := q.sortKey()
	if err != nil {
		return 0, todo.Query{}, 0, err
	}
	return mode, query, key, nil
}

func stateAbbrev(st todo.State) string {
	switch st {
	case todo.Completed:
		return "done"
	case todo.Removed:
		return "rm"
	default:
		return "open"
	}
}

func dateOrDash(d *time.Time) string {
	if d == nil {
		return "-"
	}
	return todo.FormatDate(*d)
}
