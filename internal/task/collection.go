package task

import (
	"errors"
	"fmt"
)

var ErrInvalidID = errors.New("invalid ID")

// Collection is the ordered task list. Positions are the user-facing IDs and
// are only meaningful after the engine has recomputed and sorted it during
// the current invocation.
type Collection []*Task

// Add appends t and returns its position.
func (c *Collection) Add(t *Task) int {
	*c = append(*c, t)
	return len(*c) - 1
}

// Resolve maps a positional ID to its task.
func (c Collection) Resolve(id int) (*Task, error) {
	if id < 0 || id >= len(c) {
		return nil, fmt.Errorf("%w %d: have %d tasks", ErrInvalidID, id, len(c))
	}
	return c[id], nil
}

// Remove deletes the task at position id and returns it.
func (c *Collection) Remove(id int) (*Task, error) {
	t, err := c.Resolve(id)
	if err != nil {
		return nil, err
	}
	s := *c
	copy(s[id:], s[id+1:])
	s[len(s)-1] = nil
	*c = s[:len(s)-1]
	return t, nil
}
