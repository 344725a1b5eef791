package store

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/amirbrooks/todotxt/internal/todo"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

var (
	ErrEmpty = errors.New("task list is empty")
	timeNow  = func() time.Time { return time.Now().UTC() }
)

const maxLineBytes = 1 << 20

// List is the task-list file. It is read in full at the start of a command and
// written in full at the end; nothing guards against a second process.
type List struct {
	Path string
}

func Open(path string) *List {
	return &List{Path: ExpandHome(path)}
}

// Load reads and parses every task. A missing or blank file yields ErrEmpty;
// any malformed line fails the whole load.
func (l *List) Load() ([]todo.Task, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	defer f.Close()
	tasks, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrEmpty
	}
	return tasks, nil
}

// Append adds one line at the end of the file, creating it if needed.
func (l *List) Append(t todo.Task) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.Path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	needsNewline, err := missingTrailingNewline(f)
	if err != nil {
		return err
	}
	if needsNewline {
		buf.WriteByte('\n')
	}
	buf.WriteString(todo.Format(t))
	buf.WriteByte('\n')
	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	return f.Sync()
}

// Save replaces the file with tasks, in the given order.
func (l *List) Save(tasks []todo.Task) error {
	var buf bytes.Buffer
	if err := Encode(&buf, tasks); err != nil {
		return err
	}
	return atomicWriteFile(l.Path, buf.Bytes(), 0o644)
}

// Decode parses a task list. Blank lines are skipped; format errors carry the
// 1-based line number.
func Decode(r io.Reader) ([]todo.Task, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var tasks []todo.Task
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := todo.Parse(line)
		if err != nil {
			var fe *todo.FormatError
			if errors.As(err, &fe) {
				fe.Line = n
			}
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func Encode(w io.Writer, tasks []todo.Task) error {
	bw := bufio.NewWriter(w)
	for _, t := range tasks {
		if _, err := bw.WriteString(todo.Format(t)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func missingTrailingNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		// fallback
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), newULID()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Rename is atomic on same filesystem.
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
