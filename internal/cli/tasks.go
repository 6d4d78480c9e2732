package cli

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lazypower/taskmgr/internal/config"
	"github.com/lazypower/taskmgr/internal/task"
	"github.com/spf13/cobra"
)

// fieldEdits carries the optional setters shared by add and edit. Nil means
// "leave unchanged".
type fieldEdits struct {
	Title       *string
	Description *string
	Urgency     *float64
	Due         *string
	ClearDue    bool
}

// applyEdits runs every requested setter. A rejected value does not stop the
// others; all failures are returned together.
func applyEdits(t *task.Task, e fieldEdits, loc *time.Location) error {
	var errs []error
	if e.Title != nil {
		t.SetTitle(*e.Title)
	}
	if e.Description != nil {
		t.SetDescription(*e.Description)
	}
	if e.Urgency != nil {
		if err := t.SetUrgency(*e.Urgency); err != nil {
			errs = append(errs, err)
		}
	}
	if e.ClearDue {
		t.ClearDue()
	}
	if e.Due != nil {
		due, err := parseDue(*e.Due, loc)
		if err != nil {
			errs = append(errs, err)
		} else {
			t.SetDue(due)
		}
	}
	return errors.Join(errs...)
}

// addTask appends a new task. Rejected optional fields are reported but the
// task is kept.
func addTask(tasks *task.Collection, title string, now time.Time, e fieldEdits) (*task.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, commandError(errors.New("title is required"))
	}
	t := task.New(title, now)
	tasks.Add(t)
	e.Title = nil
	return t, commandError(applyEdits(t, e, now.Location()))
}

// resolveArg parses a positional ID argument and looks it up.
func resolveArg(tasks task.Collection, arg string) (int, *task.Task, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, nil, commandError(fmt.Errorf("%w %q: not a number", task.ErrInvalidID, arg))
	}
	t, err := tasks.Resolve(id)
	if err != nil {
		return 0, nil, commandError(err)
	}
	return id, t, nil
}

func formatUrgency(u float64) string {
	return strconv.FormatFloat(math.Round(u*100)/100, 'f', -1, 64)
}

func styledUrgency(u float64) string {
	s := formatUrgency(u)
	switch {
	case u > task.MaxUrgency:
		return urgencyOverdue.Render(s)
	case u >= 7:
		return urgencyHigh.Render(s)
	}
	return urgencyLow.Render(s)
}

func statusBadge(s task.Status) string {
	label := fmt.Sprintf("%-8s", s.String())
	switch s {
	case task.StatusActive:
		return badgeActive.Render(label)
	case task.StatusDone:
		return badgeDone.Render(label)
	}
	return badgeInactive.Render(label)
}

func formatTime(t *time.Time, layout string) string {
	if t == nil {
		return "-"
	}
	return t.Format(layout)
}

func renderList(w io.Writer, tasks task.Collection, titleWidth int) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "There are currently no tasks :)")
		fmt.Fprintln(w, styleHint.Render("Run 'taskmgr add NAME' to create one."))
		return
	}
	fmt.Fprintln(w, "Tasks:")
	for i, t := range tasks {
		fmt.Fprintf(w, " ~ %d: %-*s | Status: %s, Start: %s %s %s\n",
			i, titleWidth, t.Title,
			statusBadge(t.Status),
			formatTime(t.StartTime, listDateLayout),
			styleLabel.Render("Urg:"), styledUrgency(t.Urgency))
	}
}

func renderView(w io.Writer, id int, t *task.Task) {
	fmt.Fprintf(w, " -%d- %s --- urgency: %s\n", id, styleTitle.Render(t.Title), styledUrgency(t.Urgency))
	fmt.Fprintf(w, "  %s\n", t.Description)
	due := "No Due Date"
	if t.DueTime != nil {
		due = t.DueTime.Format(viewDateLayout)
	}
	fmt.Fprintf(w, " - start: %s    due: %s \n", formatTime(t.StartTime, viewDateLayout), due)
	fmt.Fprintf(w, " - status: %s\n", statusBadge(t.Status))
}

// editsFromFlags reads only the flags the user actually set.
func editsFromFlags(cmd *cobra.Command) (fieldEdits, error) {
	var e fieldEdits
	flags := cmd.Flags()
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		e.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		e.Description = &v
	}
	if flags.Changed("urgency") {
		v, err := flags.GetFloat64("urgency")
		if err != nil {
			return e, err
		}
		e.Urgency = &v
	}
	if flags.Changed("due-time") {
		v, _ := flags.GetString("due-time")
		e.Due = &v
	}
	if flags.Changed("clear-due") {
		e.ClearDue, _ = flags.GetBool("clear-due")
	}
	return e, nil
}

// --- add ---

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a new task",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	edits, err := editsFromFlags(cmd)
	if err != nil {
		return err
	}
	return withTasks(func(tasks *task.Collection, cfg config.Config) error {
		t, err := addTask(tasks, args[0], clock.Now(), edits)
		if t != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", styleTitle.Render(t.Title))
		}
		return err
	})
}

// --- list ---

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all the tasks",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	return withTasks(func(tasks *task.Collection, cfg config.Config) error {
		renderList(cmd.OutOrStdout(), *tasks, cfg.Display.TitleWidth)
		return nil
	})
}

// --- view ---

var viewCmd = &cobra.Command{
	Use:   "view ID",
	Short: "View task by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func runView(cmd *cobra.Command, args []string) error {
	return withTasks(func(tasks *task.Collection, cfg config.Config) error {
		id, t, err := resolveArg(*tasks, args[0])
		if err != nil {
			return err
		}
		renderView(cmd.OutOrStdout(), id, t)
		return nil
	})
}

// --- edit ---

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task's values by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	edits, err := editsFromFlags(cmd)
	if err != nil {
		return err
	}
	return withTasks(func(tasks *task.Collection, cfg config.Config) error {
		_, t, err := resolveArg(*tasks, args[0])
		if err != nil {
			return err
		}
		return commandError(applyEdits(t, edits, clock.Now().Location()))
	})
}

// --- start / stop / done ---

var startCmd = &cobra.Command{
	Use:   "start ID",
	Short: "Set a task to active by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  statusRunner(func(t *task.Task) { t.SetStatus(task.StatusActive) }, "Started"),
}

var stopCmd = &cobra.Command{
	Use:   "stop ID",
	Short: "Set a task to inactive by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  statusRunner(func(t *task.Task) { t.SetStatus(task.StatusInactive) }, "Stopped"),
}

var doneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Set a task to complete by ID",
	Args:  cobra.ExactArgs(1),
	RunE:  statusRunner((*task.Task).MarkDone, "Completed"),
}

func statusRunner(apply func(*task.Task), verb string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withTasks(func(tasks *task.Collection, cfg config.Config) error {
			_, t, err := resolveArg(*tasks, args[0])
			if err != nil {
				return err
			}
			apply(t)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, styleTitle.Render(t.Title))
			return nil
		})
	}
}

// --- remove ---

var removeCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm"},
	Short:   "Remove a task by ID",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	return withTasks(func(tasks *task.Collection, cfg config.Config) error {
		id, _, err := resolveArg(*tasks, args[0])
		if err != nil {
			return err
		}
		t, err := tasks.Remove(id)
		if err != nil {
			return commandError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", styleTitle.Render(t.Title))
		return nil
	})
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "Description of task")
	addCmd.Flags().Float64P("urgency", "u", task.DefaultUrgency, "Urgency of task (0-10)")
	addCmd.Flags().StringP("due-time", "D", "", "Due time of task (dd/mm/yyyy [hh:mm])")

	editCmd.Flags().StringP("name", "n", "", "Name of the task")
	editCmd.Flags().StringP("description", "d", "", "Description of task")
	editCmd.Flags().Float64P("urgency", "u", 0, "Urgency of task (0-10)")
	editCmd.Flags().StringP("due-time", "D", "", "Due time of task (dd/mm/yyyy [hh:mm])")
	editCmd.Flags().Bool("clear-due", false, "Remove the due time")
}
