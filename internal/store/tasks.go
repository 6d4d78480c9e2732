package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/taskmgr/internal/task"
)

// Load returns every stored task in the order of the last Save.
// An empty database yields an empty collection.
func (db *DB) Load() (task.Collection, error) {
	rows, err := db.Query(`
		SELECT uuid, title, description, status, urgency, start_time, due_time
		FROM tasks
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// Save replaces the stored collection with tasks, recording each task's
// position. Tasks without a UUID are assigned one. Rows whose UUID is not in
// tasks are deleted. The whole save is one transaction.
func (db *DB) Save(tasks task.Collection) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	keep := make([]any, 0, len(tasks))
	for i, t := range tasks {
		if t.UUID == "" {
			t.UUID = uuid.NewString()
		}
		keep = append(keep, t.UUID)

		status, err := t.Status.MarshalText()
		if err != nil {
			return fmt.Errorf("save task %d: %w", i, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO tasks (uuid, position, title, description, status, urgency, start_time, due_time, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(uuid) DO UPDATE SET
				position = excluded.position,
				title = excluded.title,
				description = excluded.description,
				status = excluded.status,
				urgency = excluded.urgency,
				start_time = excluded.start_time,
				due_time = excluded.due_time,
				updated_at = excluded.updated_at
		`, t.UUID, i, t.Title, t.Description, string(status), t.Urgency,
			toMillis(t.StartTime), toMillis(t.DueTime), now, now); err != nil {
			return fmt.Errorf("save task %d (%q): %w", i, t.Title, err)
		}
	}

	del := "DELETE FROM tasks"
	if len(keep) > 0 {
		del += " WHERE uuid NOT IN (" + placeholders(len(keep)) + ")"
	}
	if _, err := tx.Exec(del, keep...); err != nil {
		return fmt.Errorf("prune removed tasks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Count returns the number of stored tasks.
func (db *DB) Count() (int, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n)
	return n, err
}

func scanTasks(rows *sql.Rows) (task.Collection, error) {
	tasks := task.Collection{}
	for rows.Next() {
		var t task.Task
		var status string
		var start, due sql.NullInt64
		if err := rows.Scan(&t.UUID, &t.Title, &t.Description, &status, &t.Urgency, &start, &due); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if err := t.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, fmt.Errorf("scan task %s: %w", t.UUID, err)
		}
		t.StartTime = fromMillis(start)
		t.DueTime = fromMillis(due)
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
