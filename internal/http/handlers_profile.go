package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"relocationos/internal/core"
	"relocationos/internal/services"
	"relocationos/internal/storage"
)

func (s *Server) handleProfileList(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.ListProfiles(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list profiles", "component", "http", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, r, "profiles.html", struct{ Profiles []core.Profile }{profiles})
}

func (s *Server) handleProfileCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errorFragment(w, http.StatusBadRequest, "malformed form")
		return
	}

	familySize, err := parseFormInt(r, "family_size", 1)
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	children, err := parseFormInt(r, "number_of_children", 0)
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	arrival, err := parseOptionalDate(r.FormValue("target_arrival_date"))
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, "invalid arrival date, use YYYY-MM-DD")
		return
	}

	p := core.Profile{
		RelocationName:     sanitizeInput(r.FormValue("relocation_name")),
		OriginCountry:      sanitizeInput(r.FormValue("origin_country")),
		DestinationCountry: sanitizeInput(r.FormValue("destination_country")),
		TargetArrivalDate:  arrival,
		FamilySize:         familySize,
		NumberOfChildren:   children,
		Pets:               parseCheckbox(r.FormValue("pets")),
		PrimaryCurrency:    strings.ToUpper(sanitizeInput(r.FormValue("primary_currency"))),
		SecondaryCurrency:  strings.ToUpper(sanitizeInput(r.FormValue("secondary_currency"))),
		Notes:              sanitizeInput(r.FormValue("notes")),
	}

	created, err := s.profiles.CreateProfile(r.Context(), p)
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profiles/%d", created.ID), http.StatusSeeOther)
}

type profileDetailData struct {
	Profile    core.Profile
	Phases     []core.Phase
	Tasks      []taskView
	Expenses   []expenseView
	Categories []core.Category
	Summary    core.BudgetSummary
}

func (s *Server) handleProfileDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	profile, err := s.profiles.GetProfile(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load profile", "component", "http", "profile_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		http.NotFound(w, r)
		return
	}

	phases, err := s.profiles.ListPhases(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list phases", "component", "http", "profile_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	tasks, err := s.tasks.ListTasks(ctx, id, storage.TaskFilter{})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list tasks", "component", "http", "profile_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	expenses, err := s.expenses.ListExpenses(ctx, id, storage.ExpenseFilter{})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list expenses", "component", "http", "profile_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	categories, err := s.profiles.ListCategories(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list categories", "component", "http", "profile_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	summary, err := s.budgetSummary(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compute budget summary", "component", "http", "profile_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	phaseNames := make(map[int64]string, len(phases))
	for _, p := range phases {
		phaseNames[p.ID] = p.Name
	}

	today := core.DateOf(time.Now())
	data := profileDetailData{
		Profile:    *profile,
		Phases:     phases,
		Categories: categories,
		Summary:    summary,
	}
	for _, t := range tasks {
		data.Tasks = append(data.Tasks, taskView{
			Task:      t,
			PhaseName: phaseNames[t.PhaseID],
			Urgency:   services.TaskUrgency(t, today),
		})
	}
	for _, e := range expenses {
		data.Expenses = append(data.Expenses, expenseView{
			Expense:   e,
			PhaseName: phaseNames[e.PhaseID],
			Urgency:   services.ExpenseUrgency(e, today),
		})
	}

	s.renderTemplate(w, r, "profile_detail.html", data)
}

func (s *Server) handleProfileDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := s.profiles.DeleteProfile(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete profile", "component", "http", "profile_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.invalidateSummary(id)

	if r.Header.Get("HX-Request") != "" {
		NewHTMXResponse(w).Trigger("profile:deleted").Redirect("/profiles").Apply()
		return
	}
	http.Redirect(w, r, "/profiles", http.StatusSeeOther)
}

func (s *Server) handlePhaseCreate(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		errorFragment(w, http.StatusBadRequest, "malformed form")
		return
	}

	start, err := parseFormInt(r, "start_month", 0)
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	end, err := parseFormInt(r, "end_month", 0)
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	// Zero order index asks the service to append after existing phases.
	orderIndex, err := parseFormInt(r, "order_index", 0)
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	_, err = s.profiles.CreatePhase(r.Context(), core.Phase{
		ProfileID:          profileID,
		Name:               sanitizeInput(r.FormValue("name")),
		Description:        sanitizeInput(r.FormValue("description")),
		RelativeStartMonth: start,
		RelativeEndMonth:   end,
		OrderIndex:         orderIndex,
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, services.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		errorFragment(w, status, err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profiles/%d", profileID), http.StatusSeeOther)
}

func (s *Server) handlePhaseDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	// Cascading delete removes the phase's tasks and expenses, so the
	// budget changes too.
	phase, err := s.profiles.GetPhase(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load phase", "component", "http", "phase_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if phase == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.profiles.DeletePhase(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrPhaseNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete phase", "component", "http", "phase_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.invalidateSummary(phase.ProfileID)

	http.Redirect(w, r, fmt.Sprintf("/profiles/%d", phase.ProfileID), http.StatusSeeOther)
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		errorFragment(w, http.StatusBadRequest, "malformed form")
		return
	}

	_, err = s.profiles.CreateCategory(r.Context(), core.Category{
		ProfileID:   profileID,
		Name:        sanitizeInput(r.FormValue("name")),
		Description: sanitizeInput(r.FormValue("description")),
	})
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, services.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		errorFragment(w, status, err.Error())
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profiles/%d", profileID), http.StatusSeeOther)
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	category, err := s.storage.GetCategory(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load category", "component", "http", "category_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if category == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.profiles.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete category", "component", "http", "category_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/profiles/%d", category.ProfileID), http.StatusSeeOther)
}
