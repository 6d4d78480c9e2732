// Package task holds the task data model and its field setters.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Urgency bounds accepted by SetUrgency. The engine may raise a task past
// MaxUrgency when it is overdue.
const (
	DefaultUrgency = 3.0
	MinUrgency     = 0.0
	MaxUrgency     = 10.0
)

var (
	ErrUrgencyRange  = errors.New("urgency out of range")
	ErrInvalidStatus = errors.New("invalid status")
)

// Status is the lifecycle state of a task.
type Status int

const (
	StatusInactive Status = iota
	StatusActive
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "Inactive"
	case StatusActive:
		return "Active"
	case StatusDone:
		return "Done"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus accepts the status names case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inactive":
		return StatusInactive, nil
	case "active":
		return StatusActive, nil
	case "done":
		return StatusDone, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// MarshalText encodes the status by name so it reads the same in JSON and SQLite.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusInactive, StatusActive, StatusDone:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, int(s))
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Task is a single tracked item. StartTime is always set by New; a nil
// StartTime only appears when a store was edited by hand.
type Task struct {
	UUID        string
	Title       string
	Description string
	Status      Status
	Urgency     float64
	StartTime   *time.Time
	DueTime     *time.Time
}

// New creates an inactive task with the default urgency, started at now.
func New(title string, now time.Time) *Task {
	start := now
	return &Task{
		UUID:      uuid.NewString(),
		Title:     title,
		Status:    StatusInactive,
		Urgency:   DefaultUrgency,
		StartTime: &start,
	}
}

func (t *Task) SetTitle(title string) {
	t.Title = title
}

func (t *Task) SetDescription(desc string) {
	t.Description = desc
}

func (t *Task) SetStatus(s Status) {
	t.Status = s
}

// SetUrgency assigns u when it lies within [MinUrgency, MaxUrgency].
func (t *Task) SetUrgency(u float64) error {
	if !(u >= MinUrgency && u <= MaxUrgency) {
		return fmt.Errorf("%w: urgency must be between %.1f and %.1f, got %v",
			ErrUrgencyRange, MinUrgency, MaxUrgency, u)
	}
	t.Urgency = u
	return nil
}

func (t *Task) SetDue(due time.Time) {
	t.DueTime = &due
}

func (t *Task) ClearDue() {
	t.DueTime = nil
}

// MarkDone closes the task and resets its urgency to zero. Done tasks are
// skipped by recompute, so the zero sticks.
func (t *Task) MarkDone() {
	t.Status = StatusDone
	t.Urgency = MinUrgency
}

// IsDone reports whether the task is excluded from urgency recompute.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}
