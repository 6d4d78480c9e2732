package engine

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/lazypower/taskmgr/internal/task"
)

// Result summarizes one recompute pass.
type Result struct {
	Total  int // tasks in the collection
	Open   int // tasks that were eligible (not Done)
	Raised int // tasks whose urgency was raised to their floor
}

// RecomputeAndSort raises every open task's urgency to its floor at now, then
// stable-sorts the whole collection by urgency, highest first. Urgency is never
// lowered and Done tasks are left as they are.
//
// If any open task lacks a start time nothing is modified and an error
// wrapping ErrMissingStartTime is returned.
func RecomputeAndSort(tasks task.Collection, now time.Time) (Result, error) {
	res := Result{Total: len(tasks)}

	floors := make([]float64, len(tasks))
	for i, t := range tasks {
		if t.IsDone() {
			continue
		}
		f, err := Floor(t, now)
		if err != nil {
			return Result{}, fmt.Errorf("recompute task %d (%q): %w", i, t.Title, err)
		}
		floors[i] = f
	}

	for i, t := range tasks {
		if t.IsDone() {
			continue
		}
		res.Open++
		if floors[i] > t.Urgency {
			t.Urgency = floors[i]
			res.Raised++
		}
	}

	SortByUrgency(tasks)
	return res, nil
}

// SortByUrgency orders tasks by descending urgency. Equal urgencies keep their
// relative order and NaN sorts after every number.
func SortByUrgency(tasks task.Collection) {
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		return cmp.Compare(b.Urgency, a.Urgency)
	})
}

// Engine binds the recompute step to a clock.
type Engine struct {
	Clock   Clock
	Verbose bool
}

// New creates an Engine. A nil clock falls back to SystemClock.
func New(clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{Clock: clock}
}

// Recompute runs RecomputeAndSort against the engine's clock.
func (e *Engine) Recompute(tasks task.Collection) (Result, error) {
	res, err := RecomputeAndSort(tasks, e.Clock.Now())
	if err != nil {
		return res, err
	}
	if e.Verbose {
		log.Printf("recompute: raised %d of %d open tasks (%d total)", res.Raised, res.Open, res.Total)
	}
	return res, nil
}
