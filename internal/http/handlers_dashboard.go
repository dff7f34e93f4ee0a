package http

import (
	"log/slog"
	"net/http"
	"time"

	"relocationos/internal/core"
	"relocationos/internal/services"
)

// taskView decorates a task with display-only fields.
type taskView struct {
	core.Task
	ProfileName string
	PhaseName   string
	Urgency     services.UrgencyLevel
}

// expenseView decorates an expense with display-only fields.
type expenseView struct {
	core.Expense
	ProfileName string
	PhaseName   string
	Urgency     services.UrgencyLevel
}

type dashboardData struct {
	Profiles []core.Profile
	Tasks    []taskView
	Expenses []expenseView
}

// handleDashboard renders the cross-profile overview: every profile plus
// the most pressing open tasks and unpaid expenses.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list profiles", "component", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	names := make(map[int64]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.RelocationName
	}

	tasks, err := s.tasks.ListIncompleteTasks(ctx, s.dashboardLimit)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list incomplete tasks", "component", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	expenses, err := s.expenses.ListUnpaidExpenses(ctx, s.dashboardLimit)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list unpaid expenses", "component", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	today := core.DateOf(time.Now())
	data := dashboardData{Profiles: profiles}
	for _, t := range tasks {
		data.Tasks = append(data.Tasks, taskView{
			Task:        t,
			ProfileName: names[t.ProfileID],
			Urgency:     services.TaskUrgency(t, today),
		})
	}
	for _, e := range expenses {
		data.Expenses = append(data.Expenses, expenseView{
			Expense:     e,
			ProfileName: names[e.ProfileID],
			Urgency:     services.ExpenseUrgency(e, today),
		})
	}

	s.renderTemplate(w, r, "dashboard.html", data)
}
