package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/taskmgr/internal/task"
)

// naiveLayout is the zone-less timestamp layout of the task.json document.
// Times are read and written in local time.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// ErrMissingStartTime is returned when an imported task that is not Done has
// no start time.
var ErrMissingStartTime = errors.New("task has no start time")

type legacyDocument struct {
	Tasks []legacyTask `json:"tasks"`
}

type legacyTask struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      task.Status `json:"status"`
	Urgency     float64     `json:"urgency"`
	StartTime   *naiveTime  `json:"start_time"`
	DueTime     *naiveTime  `json:"due_time"`
}

type naiveTime time.Time

func (n naiveTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(n).Local().Format(naiveLayout))
}

func (n *naiveTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*n = naiveTime(t)
	return nil
}

func toNaive(t *time.Time) *naiveTime {
	if t == nil {
		return nil
	}
	n := naiveTime(*t)
	return &n
}

func fromNaive(n *naiveTime) *time.Time {
	if n == nil {
		return nil
	}
	t := time.Time(*n)
	return &t
}

// ExportJSON writes tasks as a pretty-printed {"tasks": [...]} document.
func ExportJSON(w io.Writer, tasks task.Collection) error {
	doc := legacyDocument{Tasks: make([]legacyTask, 0, len(tasks))}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, legacyTask{
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Urgency:     t.Urgency,
			StartTime:   toNaive(t.StartTime),
			DueTime:     toNaive(t.DueTime),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return nil
}

// ImportJSON reads a {"tasks": [...]} document. Every imported task gets a
// fresh UUID. Open tasks must carry a start time.
func ImportJSON(r io.Reader) (task.Collection, error) {
	var doc legacyDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	tasks := make(task.Collection, 0, len(doc.Tasks))
	for i, lt := range doc.Tasks {
		if lt.StartTime == nil && lt.Status != task.StatusDone {
			return nil, fmt.Errorf("task %d (%q): %w", i, lt.Title, ErrMissingStartTime)
		}
		tasks = append(tasks, &task.Task{
			UUID:        uuid.NewString(),
			Title:       lt.Title,
			Description: lt.Description,
			Status:      lt.Status,
			Urgency:     lt.Urgency,
			StartTime:   fromNaive(lt.StartTime),
			DueTime:     fromNaive(lt.DueTime),
		})
	}
	return tasks, nil
}

// ImportFile reads a task.json document from path. A missing file yields an
// error matching fs.ErrNotExist.
func ImportFile(path string) (task.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	tasks, err := ImportJSON(f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return tasks, nil
}

// ExportFile writes tasks to path, creating its parent directory.
func ExportFile(path string, tasks task.Collection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := ExportJSON(f, tasks); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
