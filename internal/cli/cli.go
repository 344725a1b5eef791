package cli

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/amirbrooks/todotxt/internal/config"
	"github.com/amirbrooks/todotxt/internal/store"
	"github.com/amirbrooks/todotxt/internal/todo"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitFormat   = 5
	ExitInternal = 10
)

type GlobalFlags struct {
	File    string
	Config  string
	Plain   bool
	JSON    bool
	NoColor bool
	Quiet   bool
	Verbose bool
}

// App runs one command against the given streams.
type App struct {
	in  *bufio.Reader
	out io.Writer
	err io.Writer
	now func() time.Time
}

func New(in io.Reader, out, errOut io.Writer) *App {
	return &App{in: bufio.NewReader(in), out: out, err: errOut, now: time.Now}
}

func Run(args []string) int {
	return New(os.Stdin, os.Stdout, os.Stderr).Run(args)
}

// session is the per-command state shared by the subcommands.
type session struct {
	gf    GlobalFlags
	cfg   *config.Config
	list  *store.List
	log   *log.Logger
	style *palette
}

func (a *App) Run(args []string) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		return a.usageError(nil, "todotxt", err)
	}

	if len(rest) == 0 {
		a.printHelp()
		return ExitUsage
	}

	cmd := rest[0]
	cmdArgs := rest[1:]

	switch cmd {
	case "help", "--help", "-h":
		a.printHelp()
		return ExitOK
	}

	logger := newLogger(a.err, gf.Verbose, gf.Quiet)
	cfg, err := config.Load(gf.Config)
	if err != nil {
		return a.usageError(nil, "todotxt", err)
	}
	path, err := cfg.ResolveFile(gf.File)
	if err != nil {
		return a.usageError(nil, "todotxt", err)
	}
	logger.Debug("resolved task list", "file", path, "config", cfg.Source)

	s := &session{
		gf:    gf,
		cfg:   cfg,
		list:  store.Open(path),
		log:   logger,
		style: newPalette(a.out, cfg.ColorEnabled() && !gf.NoColor && !gf.Plain),
	}

	switch cmd {
	case "add", "a":
		return a.cmdAdd(s, cmdArgs)
	case "ls", "list":
		return a.cmdList(s, cmdArgs)
	case "done", "complete":
		return a.cmdComplete(s, cmdArgs)
	case "modify", "edit":
		return a.cmdModify(s, cmdArgs)
	case "rm", "remove":
		return a.cmdRemove(s, cmdArgs)
	case "delete":
		return a.cmdDelete(s, cmdArgs)
	case "export":
		return a.cmdExport(s, cmdArgs)
	case "config", "cfg":
		return a.cmdConfig(s, cmdArgs)
	default:
		a.usageError(s, "todotxt", fmt.Errorf("unknown command %q", cmd))
		a.printHelp()
		return ExitUsage
	}
}

func (a *App) printHelp() {
	fmt.Fprint(a.out, `todotxt: plain-text to-do list, one task per line

Usage:
  todotxt [global flags] <command> [args]

Global flags:
  --file <path>    Task list (default: $TODOTXT_FILE, config "file", or ~/todo.txt)
  --config <path>  Config file (default: $TODOTXT_CONFIG or <config dir>/todotxt/config.yaml)
  --plain          TSV output, no colour
  --json           JSON output to stdout
  --no-color
  --quiet
  --verbose

Commands:
  add "<content>" [--priority A|B|C|O] [--due YYYY-MM-DD]
  ls [--mode pcr] [--keyword <s>] [--tag <t>] [--priority <P>] [--before <date>] [--sort priority|due]
  done [query flags]
  modify [query flags]
  rm [query flags]
  delete [--mode pcr] [query flags]
  export [--format json|ndjson|yaml|toml] [--out <dir>] [--mode pcr] [query flags]
  config show

Modes:
  p pending, c completed, r removed (combine, e.g. --mode pc)

Interactive commands list the candidates with ids and read the ids to act on
from stdin, e.g. "1 3 4". An empty line changes nothing.
`)
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	// Allow flags anywhere by scanning and stripping known globals.
	gf := GlobalFlags{}
	out := make([]string, 0, len(args))
	skip := 0

	for i := 0; i < len(args); i++ {
		if skip > 0 {
			skip--
			continue
		}
		a := args[i]
		if a == "--" {
			out = append(out, args[i:]...)
			break
		}
		switch {
		case a == "--file" || a == "-f":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--file requires a value")
			}
			gf.File = args[i+1]
			skip = 1
		case strings.HasPrefix(a, "--file="):
			gf.File = strings.TrimPrefix(a, "--file=")
		case a == "--config":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--config requires a value")
			}
			gf.Config = args[i+1]
			skip = 1
		case strings.HasPrefix(a, "--config="):
			gf.Config = strings.TrimPrefix(a, "--config=")
		case a == "--plain":
			gf.Plain = true
		case a == "--json":
			gf.JSON = true
		case a == "--no-color":
			gf.NoColor = true
		case a == "--quiet":
			gf.Quiet = true
		case a == "--verbose":
			gf.Verbose = true
		default:
			out = append(out, a)
		}
	}

	if gf.JSON && gf.Plain {
		return gf, nil, errors.New("--json and --plain are mutually exclusive")
	}
	if gf.Quiet && gf.Verbose {
		return gf, nil, errors.New("--quiet and --verbose are mutually exclusive")
	}
	return gf, out, nil
}

func reorderFlags(args []string, takesValue map[string]bool) []string {
	if len(args) == 0 {
		return args
	}
	var flags []string
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			if i+1 < len(args) {
				rest = append(rest, args[i+1:]...)
			}
			break
		}
		if strings.HasPrefix(a, "-") && a != "-" {
			flags = append(flags, a)
			if takesValue[a] && !strings.Contains(a, "=") {
				if i+1 < len(args) {
					flags = append(flags, args[i+1])
					i++
				}
			}
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) > 0 {
		flags = append(flags, "--")
	}
	return append(flags, rest...)
}

// queryFlags are the filter flags shared by listing and selection commands.
type queryFlags struct {
	mode     string
	keyword  string
	tag      string
	priority string
	before   string
	sort     string
}

var queryFlagValues = map[string]bool{
	"--mode": true, "-m": true,
	"--keyword": true, "-k": true,
	"--tag": true, "-t": true,
	"--priority": true, "-p": true,
	"--before": true, "-b": true,
	"--sort": true, "-s": true,
}

func addQueryFlags(fs *flag.FlagSet, q *queryFlags, withMode bool, defaultMode, defaultSort string) {
	if withMode {
		fs.StringVar(&q.mode, "mode", defaultMode, "States to include: p, c, r")
		fs.StringVar(&q.mode, "m", defaultMode, "Shorthand for --mode")
	}
	fs.StringVar(&q.keyword, "keyword", "", "Content must contain this text")
	fs.StringVar(&q.keyword, "k", "", "Shorthand for --keyword")
	fs.StringVar(&q.tag, "tag", "", "Content must carry this #tag")
	fs.StringVar(&q.tag, "t", "", "Shorthand for --tag")
	fs.StringVar(&q.priority, "priority", "", "Minimum priority (A|B|C|O)")
	fs.StringVar(&q.priority, "p", "", "Shorthand for --priority")
	fs.StringVar(&q.before, "before", "", "Due on or before this date (YYYY-MM-DD)")
	fs.StringVar(&q.before, "b", "", "Shorthand for --before")
	fs.StringVar(&q.sort, "sort", defaultSort, "Sort by priority or due")
	fs.StringVar(&q.sort, "s", defaultSort, "Shorthand for --sort")
}

func (q *queryFlags) query() (todo.Query, error) {
	out := todo.Query{
		Keyword: q.keyword,
		Tag:     strings.TrimPrefix(strings.TrimSpace(q.tag), "#"),
	}
	if strings.TrimSpace(q.priority) != "" {
		p := todo.ParsePriority(q.priority)
		out.MinPriority = &p
	}
	if strings.TrimSpace(q.before) != "" {
		d, err := todo.ParseDate(q.before)
		if err != nil {
			return todo.Query{}, fmt.Errorf("invalid --before date %q: want YYYY-MM-DD", q.before)
		}
		out.DueBefore = &d
	}
	return out, nil
}

func (q *queryFlags) sortKey() (todo.SortKey, error) {
	return todo.ParseSortKey(q.sort)
}

func (q *queryFlags) displayMode() (todo.Mode, error) {
	return todo.ParseMode(q.mode)
}

// parseCommand parses the flags of one subcommand, accepting them anywhere.
func (a *App) parseCommand(name string, args []string, takesValue map[string]bool, setup func(fs *flag.FlagSet)) (*flag.FlagSet, bool) {
	values := map[string]bool{}
	for k, v := range queryFlagValues {
		values[k] = v
	}
	for k, v := range takesValue {
		values[k] = v
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	setup(fs)
	if err := fs.Parse(reorderFlags(args, values)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(a.err)
			fs.PrintDefaults()
		} else {
			a.usageError(nil, name, err)
		}
		return nil, false
	}
	return fs, true
}

func (s *session) sortDefault() string {
	return strings.TrimSpace(s.cfg.Sort)
}

func (s *session) modeDefault(fallback string) string {
	if m := strings.TrimSpace(s.cfg.Mode); m != "" {
		return m
	}
	return fallback
}

// loadTasks reads the list and reports the outcome. ok is false when the
// command should stop with code.
func (a *App) loadTasks(s *session, cmd string) (tasks []todo.Task, code int, ok bool) {
	tasks, err := s.list.Load()
	if err != nil {
		return nil, a.fail(s, cmd, err), false
	}
	s.log.Debug("loaded tasks", "file", s.list.Path, "count", len(tasks))
	return tasks, ExitOK, true
}

// fail reports err and maps it to an exit code. An empty list is reported but
// is not a failure.
func (a *App) fail(s *session, cmd string, err error) int {
	fmt.Fprintf(a.err, "%s %s: %v\n", s.style.errMark(), cmd, err)
	switch {
	case errors.Is(err, store.ErrEmpty):
		return ExitOK
	case errors.Is(err, todo.ErrFormat):
		return ExitFormat
	default:
		return ExitInternal
	}
}

// usageError reports a usage or config problem under the error marker. s is nil
// before the session exists, so the marker is printed without colour.
func (a *App) usageError(s *session, cmd string, err error) int {
	mark := markText
	if s != nil {
		mark = s.style.errMark()
	}
	fmt.Fprintf(a.err, "%s %s: %v\n", mark, cmd, err)
	return ExitUsage
}

func (a *App) usage(msg string) int {
	fmt.Fprintf(a.err, "%s usage: todotxt %s\n", markText, msg)
	return ExitUsage
}

func (a *App) notice(s *session, format string, args ...any) {
	fmt.Fprintf(a.err, "%s %s\n", s.style.errMark(), fmt.Sprintf(format, args...))
}

func (a *App) info(s *session, format string, args ...any) {
	if s.gf.Quiet {
		return
	}
	fmt.Fprintf(a.out, "%s %s\n", s.style.infoMark(), fmt.Sprintf(format, args...))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
