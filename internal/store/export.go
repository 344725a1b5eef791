package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/todotxt/internal/todo"
)

const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatYAML   = "yaml"
	FormatTOML   = "toml"
)

// Record is the export shape of a task.
type Record struct {
	ID          int      `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	State       string   `json:"state" yaml:"state" toml:"state"`
	Priority    string   `json:"priority" yaml:"priority" toml:"priority"`
	Content     string   `json:"content" yaml:"content" toml:"content"`
	Tags        []string `json:"tags" yaml:"tags" toml:"tags"`
	CreatedAt   string   `json:"created_at" yaml:"created_at" toml:"created_at"`
	DueTo       string   `json:"due_to,omitempty" yaml:"due_to,omitempty" toml:"due_to,omitempty"`
	CompletedAt string   `json:"completed_at,omitempty" yaml:"completed_at,omitempty" toml:"completed_at,omitempty"`
	Line        string   `json:"line" yaml:"line" toml:"line"`
}

func NewRecord(id int, t todo.Task) Record {
	r := Record{
		ID:        id,
		State:     t.State.String(),
		Priority:  t.Priority.String(),
		Content:   t.Content,
		Tags:      t.Tags,
		CreatedAt: todo.FormatDate(t.CreatedAt),
		Line:      todo.Format(t),
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if t.DueTo != nil {
		r.DueTo = todo.FormatDate(*t.DueTo)
	}
	if t.CompletedAt != nil {
		r.CompletedAt = todo.FormatDate(*t.CompletedAt)
	}
	return r
}

type exportDoc struct {
	Tasks []Record `json:"tasks" yaml:"tasks" toml:"tasks"`
}

func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return FormatJSON, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (json|ndjson|yaml|toml)", format)
	}
}

// MarshalRecords renders records in one of the export formats.
func MarshalRecords(format string, records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	doc := exportDoc{Tasks: records}
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case FormatNDJSON:
		var buf bytes.Buffer
		for _, r := range records {
			line, err := json.Marshal(r)
			if err != nil {
				return nil, err
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// WriteExport writes records to <dir>/<base>-<timestamp>.<ext> and returns the
// path. An existing name gets a numeric suffix.
func WriteExport(dir, base, format string, records []Record) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("export directory is empty")
	}
	data, err := MarshalRecords(format, records)
	if err != nil {
		return "", err
	}
	dir = ExpandHome(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ts := timeNow().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", base, ts, format))
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			break
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%s-%d.%s", base, ts, i, format))
	}
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
