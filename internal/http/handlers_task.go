package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"relocationos/internal/core"
	"relocationos/internal/services"
	"relocationos/internal/storage"
)

type taskListData struct {
	ProfileID int64
	Tasks     []taskView
}

// renderTaskList writes the task list fragment for a profile.
func (s *Server) renderTaskList(w http.ResponseWriter, r *http.Request, profileID int64, f storage.TaskFilter) {
	ctx := r.Context()

	tasks, err := s.tasks.ListTasks(ctx, profileID, f)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list tasks", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	phases, err := s.profiles.ListPhases(ctx, profileID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list phases", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	phaseNames := make(map[int64]string, len(phases))
	for _, p := range phases {
		phaseNames[p.ID] = p.Name
	}

	today := core.DateOf(time.Now())
	data := taskListData{ProfileID: profileID}
	for _, t := range tasks {
		data.Tasks = append(data.Tasks, taskView{
			Task:      t,
			PhaseName: phaseNames[t.PhaseID],
			Urgency:   services.TaskUrgency(t, today),
		})
	}

	s.renderTemplate(w, r, "task_list.html", data)
}

// handleTaskList serves the filterable task fragment. An empty or invalid
// status query falls back to the unfiltered list.
func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var f storage.TaskFilter
	if raw := core.TaskStatus(sanitizeInput(r.URL.Query().Get("status"))); raw.IsValid() {
		f.Status = &raw
	}

	s.renderTaskList(w, r, profileID, f)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		errorFragment(w, http.StatusBadRequest, "malformed form")
		return
	}

	phaseID, err := parseFormInt64(r, "phase_id")
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, "a phase is required")
		return
	}
	planned, err := parseOptionalDate(r.FormValue("planned_date"))
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, "invalid planned date, use YYYY-MM-DD")
		return
	}

	t := core.Task{
		ProfileID:   profileID,
		PhaseID:     phaseID,
		Title:       sanitizeInput(r.FormValue("title")),
		Description: sanitizeInput(r.FormValue("description")),
		Status:      core.TaskStatus(sanitizeInput(r.FormValue("status"))),
		Critical:    parseCheckbox(r.FormValue("critical")),
		PlannedDate: planned,
		Notes:       sanitizeInput(r.FormValue("notes")),
	}

	if _, err := s.tasks.CreateTask(r.Context(), t); err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, services.ErrPhaseNotFound):
			status = http.StatusNotFound
		case errors.Is(err, services.ErrPhaseOwnership):
			status = http.StatusConflict
		}
		errorFragment(w, status, err.Error())
		return
	}

	NewHTMXResponse(w).
		Trigger("task:changed").
		Notify("success", "Task added").
		Apply()
	s.renderTaskList(w, r, profileID, storage.TaskFilter{})
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		errorFragment(w, http.StatusBadRequest, "malformed form")
		return
	}

	// Blank date means completed today.
	var when core.Date
	if completed, err := parseOptionalDate(r.FormValue("completed_date")); err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, "invalid completion date, use YYYY-MM-DD")
		return
	} else if completed != nil {
		when = *completed
	}

	task, err := s.tasks.MarkCompleted(r.Context(), id, when)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to complete task", "component", "http", "task_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	NewHTMXResponse(w).
		Trigger("task:changed").
		Notify("success", "Task completed").
		Apply()
	s.renderTaskList(w, r, task.ProfileID, storage.TaskFilter{})
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	task, err := s.tasks.GetTask(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load task", "component", "http", "task_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if task == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.tasks.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete task", "component", "http", "task_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	NewHTMXResponse(w).
		Trigger("task:changed").
		Notify("success", "Task deleted").
		Apply()
	s.renderTaskList(w, r, task.ProfileID, storage.TaskFilter{})
}
