package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/taskmgr/internal/engine"
	"github.com/lazypower/taskmgr/internal/store"
	"github.com/lazypower/taskmgr/internal/task"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)

const day = 24 * time.Hour

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seed(t *testing.T, db *store.DB, tasks ...*task.Task) {
	t.Helper()
	if err := db.Save(tasks); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func mustLoad(t *testing.T, db *store.DB) task.Collection {
	t.Helper()
	tasks, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tasks
}

func strptr(s string) *string { return &s }

func floatptr(f float64) *float64 { return &f }

func TestRunSessionSortsBeforeCommand(t *testing.T) {
	db := testDB(t)
	low := task.New("low", t0)
	low.Urgency = 1
	high := task.New("high", t0)
	high.Urgency = 9
	seed(t, db, low, high)

	eng := engine.New(engine.FixedClock(t0))
	var seen string
	err := runSession(db, eng, func(tasks *task.Collection) error {
		tk, err := tasks.Resolve(0)
		if err != nil {
			return err
		}
		seen = tk.Title
		return nil
	})
	if err != nil {
		t.Fatalf("runSession: %v", err)
	}
	if seen != "high" {
		t.Errorf("ID 0 resolved to %q, want high", seen)
	}
	if got := mustLoad(t, db); got[0].Title != "high" {
		t.Errorf("saved order starts with %q, want high", got[0].Title)
	}
}

func TestRunSessionSavesRecomputeOnCommandError(t *testing.T) {
	db := testDB(t)
	seed(t, db, task.New("aging", t0))

	eng := engine.New(engine.FixedClock(t0.Add(8 * day)))
	err := runSession(db, eng, func(tasks *task.Collection) error {
		_, _, err := resolveArg(*tasks, "7")
		return err
	})
	if !errors.Is(err, ErrCommand) || !errors.Is(err, task.ErrInvalidID) {
		t.Fatalf("err = %v, want ErrCommand wrapping ErrInvalidID", err)
	}

	got := mustLoad(t, db)
	if got[0].Urgency != 4.0 {
		t.Errorf("saved Urgency = %v, want recomputed 4.0", got[0].Urgency)
	}
}

func TestRunSessionAbortsOnMissingStartTime(t *testing.T) {
	db := testDB(t)
	seed(t, db, task.New("ok", t0), task.New("broken", t0))
	if _, err := db.Exec("UPDATE tasks SET start_time = NULL WHERE title = 'broken'"); err != nil {
		t.Fatalf("update: %v", err)
	}

	called := false
	err := runSession(db, engine.New(engine.FixedClock(t0.Add(30*day))), func(tasks *task.Collection) error {
		called = true
		return nil
	})
	if !errors.Is(err, engine.ErrMissingStartTime) {
		t.Fatalf("err = %v, want ErrMissingStartTime", err)
	}
	if called {
		t.Error("command ran after failed recompute")
	}
	if got := mustLoad(t, db); got[0].Urgency != task.DefaultUrgency {
		t.Errorf("Urgency = %v, want untouched %v", got[0].Urgency, task.DefaultUrgency)
	}
}

func TestAddTask(t *testing.T) {
	var tasks task.Collection

	tk, err := addTask(&tasks, "write report", t0, fieldEdits{
		Description: strptr("quarterly"),
		Urgency:     floatptr(6),
		Due:         strptr("15/03/2024"),
	})
	if err != nil {
		t.Fatalf("addTask: %v", err)
	}
	if len(tasks) != 1 || tasks[0] != tk {
		t.Fatalf("collection = %d tasks, want the new one", len(tasks))
	}
	if tk.Description != "quarterly" || tk.Urgency != 6 {
		t.Errorf("task = %+v", tk)
	}
	wantDue := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	if tk.DueTime == nil || !tk.DueTime.Equal(wantDue) {
		t.Errorf("DueTime = %v, want %v", tk.DueTime, wantDue)
	}
	if !tk.StartTime.Equal(t0) || tk.Status != task.StatusInactive {
		t.Errorf("StartTime/Status = %v/%v", tk.StartTime, tk.Status)
	}
}

func TestAddTaskKeepsTaskOnBadField(t *testing.T) {
	var tasks task.Collection

	tk, err := addTask(&tasks, "x", t0, fieldEdits{
		Urgency: floatptr(11),
		Due:     strptr("not a date"),
	})
	if !errors.Is(err, task.ErrUrgencyRange) {
		t.Errorf("err = %v, want ErrUrgencyRange", err)
	}
	if !errors.Is(err, ErrCommand) {
		t.Errorf("err = %v, want ErrCommand", err)
	}
	if len(tasks) != 1 || tk == nil {
		t.Fatal("expected task to be kept")
	}
	if tk.Urgency != task.DefaultUrgency || tk.DueTime != nil {
		t.Errorf("task = %+v, want defaults", tk)
	}
}

func TestAddTaskRequiresTitle(t *testing.T) {
	var tasks task.Collection
	if _, err := addTask(&tasks, "  ", t0, fieldEdits{}); !errors.Is(err, ErrCommand) {
		t.Errorf("err = %v, want ErrCommand", err)
	}
	if len(tasks) != 0 {
		t.Errorf("len = %d, want 0", len(tasks))
	}
}

func TestApplyEdits(t *testing.T) {
	tk := task.New("old", t0)
	due := t0.Add(day)
	tk.DueTime = &due

	err := applyEdits(tk, fieldEdits{
		Title:       strptr("new"),
		Description: strptr("desc"),
		ClearDue:    true,
	}, time.Local)
	if err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	if tk.Title != "new" || tk.Description != "desc" || tk.DueTime != nil {
		t.Errorf("task = %+v", tk)
	}

	// A rejected urgency still lets the other setters through.
	err = applyEdits(tk, fieldEdits{Title: strptr("newer"), Urgency: floatptr(-1)}, time.Local)
	if !errors.Is(err, task.ErrUrgencyRange) {
		t.Errorf("err = %v, want ErrUrgencyRange", err)
	}
	if tk.Title != "newer" {
		t.Errorf("Title = %q, want newer", tk.Title)
	}
}

func TestResolveArg(t *testing.T) {
	tasks := task.Collection{task.New("a", t0), task.New("b", t0)}

	id, tk, err := resolveArg(tasks, "1")
	if err != nil {
		t.Fatalf("resolveArg: %v", err)
	}
	if id != 1 || tk.Title != "b" {
		t.Errorf("resolveArg(1) = %d/%q", id, tk.Title)
	}

	for _, arg := range []string{"2", "-1", "one", ""} {
		if _, _, err := resolveArg(tasks, arg); !errors.Is(err, task.ErrInvalidID) {
			t.Errorf("resolveArg(%q) err = %v, want ErrInvalidID", arg, err)
		}
	}
}

func TestParseDue(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, loc)},
		{"15/03/2024 17:30", time.Date(2024, 3, 15, 17, 30, 0, 0, loc)},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc)},
		{"2024-03-15 08:05", time.Date(2024, 3, 15, 8, 5, 0, 0, loc)},
		{"2024-03-15T08:05:00Z", time.Date(2024, 3, 15, 8, 5, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDue(tt.in, loc)
		if err != nil {
			t.Errorf("parseDue(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "tomorrow", "31/02/2024", "2024/03/15"} {
		if _, err := parseDue(bad, loc); err == nil {
			t.Errorf("parseDue(%q) succeeded, want error", bad)
		}
	}
}

func TestRenderList(t *testing.T) {
	var buf bytes.Buffer
	renderList(&buf, nil, 60)
	if !strings.Contains(buf.String(), "There are currently no tasks :)") {
		t.Errorf("empty list = %q", buf.String())
	}

	active := task.New("ship it", t0)
	active.Status = task.StatusActive
	active.Urgency = 12.5
	buf.Reset()
	renderList(&buf, task.Collection{active, task.New("later", t0)}, 10)
	out := buf.String()

	for _, want := range []string{"Tasks:", " ~ 0: ship it    | Status: ", "Active", "Start: 01/03/2024", "Urg:", "12.5", " ~ 1: later"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderView(t *testing.T) {
	tk := task.New("ship it", t0)
	tk.Description = "all of it"

	var buf bytes.Buffer
	renderView(&buf, 3, tk)
	out := buf.String()
	for _, want := range []string{" -3- ", "ship it", "urgency: ", "  all of it", "start: 09:00, 01-03-2024", "due: No Due Date"} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q:\n%s", want, out)
		}
	}

	due := time.Date(2024, 3, 15, 17, 30, 0, 0, time.Local)
	tk.DueTime = &due
	buf.Reset()
	renderView(&buf, 3, tk)
	if !strings.Contains(buf.String(), "due: 17:30, 15-03-2024") {
		t.Errorf("view output missing due time:\n%s", buf.String())
	}
}

func TestFormatUrgency(t *testing.T) {
	for in, want := range map[float64]string{
		3:         "3",
		4.5:       "4.5",
		7.5000001: "7.5",
		100:       "100",
	} {
		if got := formatUrgency(in); got != want {
			t.Errorf("formatUrgency(%v) = %q, want %q", in, got, want)
		}
	}
}

// execute runs the root command against a throwaway database.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{
		"--db", dbPath,
		"--config", filepath.Join(filepath.Dir(dbPath), "config.yaml"),
	}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	prev := clock
	t.Cleanup(func() { clock = prev })
	t.Setenv("TASKMGR_DB", "")
	dbPath := filepath.Join(t.TempDir(), "tasks.db")

	clock = engine.FixedClock(t0)
	if _, err := execute(t, dbPath, "add", "old chore"); err != nil {
		t.Fatalf("add: %v", err)
	}

	clock = engine.FixedClock(t0.Add(10 * day))
	if _, err := execute(t, dbPath, "add", "fresh chore"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// The ten day old chore has floor 5.0 and sorts first.
	out, err := execute(t, dbPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	first := strings.Index(out, "old chore")
	second := strings.Index(out, "fresh chore")
	if first < 0 || second < 0 || first > second {
		t.Errorf("list order wrong:\n%s", out)
	}
	if !strings.Contains(out, " ~ 0: old chore") {
		t.Errorf("expected old chore at ID 0:\n%s", out)
	}

	if _, err := execute(t, dbPath, "done", "0"); err != nil {
		t.Fatalf("done: %v", err)
	}
	if _, err := execute(t, dbPath, "view", "9"); !errors.Is(err, task.ErrInvalidID) {
		t.Errorf("view 9 err = %v, want ErrInvalidID", err)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	tasks := mustLoad(t, db)
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
	if tasks[0].Title != "fresh chore" || tasks[1].Title != "old chore" {
		t.Errorf("order = [%q %q], want done task last", tasks[0].Title, tasks[1].Title)
	}
	if !tasks[1].IsDone() || tasks[1].Urgency != 0 {
		t.Errorf("done task = %v/%v, want Done/0", tasks[1].Status, tasks[1].Urgency)
	}
}

const importDoc = `{"tasks":[
  {"title":"fresh","description":"","status":"Inactive","urgency":3,"start_time":"2024-03-09T09:00:00","due_time":null},
  {"title":"stale","description":"","status":"Active","urgency":1,"start_time":"2024-03-01T09:00:00","due_time":null}
]}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func exportedTasks(t *testing.T, dbPath string) []struct {
	Title   string
	Urgency float64
} {
	t.Helper()
	out, err := execute(t, dbPath, "export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var doc struct {
		Tasks []struct {
			Title   string
			Urgency float64
		}
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode export: %v\n%s", err, out)
	}
	return doc.Tasks
}

func TestImportExportCommands(t *testing.T) {
	prev := clock
	t.Cleanup(func() { clock = prev })
	t.Setenv("TASKMGR_DB", "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tasks.db")
	clock = engine.FixedClock(t0.Add(8 * day))

	if _, err := execute(t, dbPath, "add", "to be replaced"); err != nil {
		t.Fatalf("add: %v", err)
	}

	good := filepath.Join(dir, "good.json")
	writeFile(t, good, importDoc)
	out, err := execute(t, dbPath, "import", good)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 2 tasks (replaced 1)") {
		t.Errorf("import output = %q", out)
	}

	// Export writes to stdout; the eight day old task is raised to 4.0 and sorts first.
	tasks := exportedTasks(t, dbPath)
	if len(tasks) != 2 {
		t.Fatalf("exported %d tasks, want 2", len(tasks))
	}
	if tasks[0].Title != "stale" || tasks[0].Urgency != 4.0 {
		t.Errorf("first = %q/%v, want stale/4", tasks[0].Title, tasks[0].Urgency)
	}
	if tasks[1].Title != "fresh" || tasks[1].Urgency != 3.0 {
		t.Errorf("second = %q/%v, want fresh/3", tasks[1].Title, tasks[1].Urgency)
	}

	file := filepath.Join(dir, "out", "task.json")
	if _, err := execute(t, dbPath, "export", file); err != nil {
		t.Fatalf("export file: %v", err)
	}
	if _, err := store.ImportFile(file); err != nil {
		t.Errorf("re-import exported file: %v", err)
	}
}

func TestImportRejectsMissingStartTime(t *testing.T) {
	prev := clock
	t.Cleanup(func() { clock = prev })
	t.Setenv("TASKMGR_DB", "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tasks.db")
	clock = engine.FixedClock(t0)

	if _, err := execute(t, dbPath, "add", "keep me"); err != nil {
		t.Fatalf("add: %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"tasks":[{"title":"x","description":"","status":"Active","urgency":3,"start_time":null,"due_time":null}]}`)
	if _, err := execute(t, dbPath, "import", bad); !errors.Is(err, store.ErrMissingStartTime) {
		t.Fatalf("import err = %v, want ErrMissingStartTime", err)
	}

	// The store is untouched and still usable.
	if _, err := execute(t, dbPath, "list"); err != nil {
		t.Fatalf("list after rejected import: %v", err)
	}
	tasks := exportedTasks(t, dbPath)
	if len(tasks) != 1 || tasks[0].Title != "keep me" {
		t.Errorf("tasks = %+v, want only keep me", tasks)
	}
}

func TestImportRecoversBrokenStore(t *testing.T) {
	prev := clock
	t.Cleanup(func() { clock = prev })
	t.Setenv("TASKMGR_DB", "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tasks.db")
	clock = engine.FixedClock(t0.Add(8 * day))

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	broken := task.New("broken", t0)
	broken.StartTime = nil
	seed(t, db, broken)
	db.Close()

	if _, err := execute(t, dbPath, "list"); !errors.Is(err, engine.ErrMissingStartTime) {
		t.Fatalf("list err = %v, want ErrMissingStartTime", err)
	}

	good := filepath.Join(dir, "good.json")
	writeFile(t, good, importDoc)
	if _, err := execute(t, dbPath, "import", good); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, err := execute(t, dbPath, "list")
	if err != nil {
		t.Fatalf("list after import: %v", err)
	}
	if strings.Contains(out, "broken") || !strings.Contains(out, "stale") {
		t.Errorf("list after import:\n%s", out)
	}
}

func TestEditParsesDueInClockZone(t *testing.T) {
	prev := clock
	t.Cleanup(func() { clock = prev })
	t.Setenv("TASKMGR_DB", "")
	dbPath := filepath.Join(t.TempDir(), "tasks.db")
	zone := time.FixedZone("UTC+5", 5*60*60)
	clock = engine.FixedClock(t0.In(zone))

	if _, err := execute(t, dbPath, "add", "zoned"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := execute(t, dbPath, "edit", "0", "-D", "05/03/2024 10:00"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	tasks := mustLoad(t, db)
	want := time.Date(2024, 3, 5, 10, 0, 0, 0, zone)
	if tasks[0].DueTime == nil || !tasks[0].DueTime.Equal(want) {
		t.Errorf("due = %v, want %v", tasks[0].DueTime, want)
	}
}

func TestVersionString(t *testing.T) {
	prevV, prevC := Version, Commit
	t.Cleanup(func() { Version, Commit = prevV, prevC })

	Version, Commit = "v1.2.0", "none"
	if got := VersionString(); got != "v1.2.0" {
		t.Errorf("VersionString() = %q, want v1.2.0", got)
	}
	Commit = "abc123"
	if got := VersionString(); got != "v1.2.0+abc123" {
		t.Errorf("VersionString() = %q, want v1.2.0+abc123", got)
	}

	out, err := execute(t, filepath.Join(t.TempDir(), "tasks.db"), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "v1.2.0") || !strings.Contains(out, "commit: abc123") {
		t.Errorf("version output = %q", out)
	}
}
