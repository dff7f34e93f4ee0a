package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"relocationos/internal/export"
	"relocationos/internal/mirror"
	"relocationos/internal/storage"
)

// handleExportWorkbook builds the budget workbook on demand and streams
// it as a download. The async mirror pipeline produces the same workbook;
// this endpoint exists for users who want the file right now.
func (s *Server) handleExportWorkbook(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load profile", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.NotFound(w, r)
		return
	}

	phases, err := s.profiles.ListPhases(ctx, profileID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list phases", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	tasks, err := s.tasks.ListTasks(ctx, profileID, storage.TaskFilter{})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list tasks", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	expenses, err := s.expenses.ListExpenses(ctx, profileID, storage.ExpenseFilter{})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list expenses", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	summary, err := s.budgetSummary(ctx, profileID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compute budget summary", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	f, err := export.BuildWorkbook(mirror.Snapshot{
		Profile:     *profile,
		Phases:      phases,
		Tasks:       tasks,
		Expenses:    expenses,
		Summary:     summary,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to build workbook", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%d-budget.xlsx"`, profileID))
	if err := f.Write(w); err != nil {
		slog.ErrorContext(ctx, "Failed to stream workbook", "component", "http", "profile_id", profileID, "error", err)
	}
}
