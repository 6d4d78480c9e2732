package engine

import (
	"errors"
	"time"

	"github.com/lazypower/taskmgr/internal/task"
)

// Urgency floor model:
//   - Due date set: floor = elapsed/total * MaximumUrgency, measured from the
//     start time. Not clamped, so an overdue task keeps climbing past 10.
//   - No due date: floor = whole days since start * UrgencyMultiplier,
//     capped at MaximumUrgency.
//   - due == start: ratio is 1 once now >= start, 0 before it.
//   - due < start: total is negative, the floor goes negative and never raises
//     the stored urgency.
const (
	MaximumUrgency    = 10.0
	UrgencyMultiplier = 0.5
)

const day = 24 * time.Hour

var ErrMissingStartTime = errors.New("task has no start time")

// Floor returns the minimum urgency t should carry at now.
func Floor(t *task.Task, now time.Time) (float64, error) {
	if t.StartTime == nil {
		return 0, ErrMissingStartTime
	}
	start := *t.StartTime
	elapsed := now.Sub(start)

	if t.DueTime != nil {
		return deadlineFloor(elapsed, t.DueTime.Sub(start)), nil
	}
	return ageFloor(elapsed), nil
}

func deadlineFloor(elapsed, total time.Duration) float64 {
	var ratio float64
	switch {
	case total != 0:
		ratio = elapsed.Seconds() / total.Seconds()
	case elapsed >= 0:
		ratio = 1
	default:
		ratio = 0
	}
	return ratio * MaximumUrgency
}

func ageFloor(elapsed time.Duration) float64 {
	days := int64(elapsed / day)
	return min(float64(days)*UrgencyMultiplier, MaximumUrgency)
}
