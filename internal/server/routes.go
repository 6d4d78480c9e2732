package server

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/taskmgr/internal/task"
)

type taskView struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Urgency     float64    `json:"urgency"`
	StartTime   *time.Time `json:"start_time"`
	DueTime     *time.Time `json:"due_time"`
}

func viewOf(id int, t *task.Task) taskView {
	return taskView{
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		Urgency:     t.Urgency,
		StartTime:   t.StartTime,
		DueTime:     t.DueTime,
	}
}

// ordered loads the collection and puts it in this request's priority order.
func (s *Server) ordered() (task.Collection, error) {
	tasks, err := s.db.Load()
	if err != nil {
		return nil, err
	}
	if _, err := s.engine.Recompute(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.ordered()
	if err != nil {
		log.Printf("list tasks: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]taskView, 0, len(tasks))
	for i, t := range tasks {
		views = append(views, viewOf(i, t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	tasks, err := s.ordered()
	if err != nil {
		log.Printf("get task %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	t, err := tasks.Resolve(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(id, t))
}
