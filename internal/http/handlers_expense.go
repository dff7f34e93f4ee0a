package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"relocationos/internal/core"
	"relocationos/internal/currency"
	"relocationos/internal/services"
	"relocationos/internal/storage"
)

type expenseListData struct {
	ProfileID int64
	Currency  string
	Expenses  []expenseView
}

func (s *Server) renderExpenseList(w http.ResponseWriter, r *http.Request, profileID int64, f storage.ExpenseFilter) {
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

	expenses, err := s.expenses.ListExpenses(ctx, profileID, f)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list expenses", "component", "http", "profile_id", profileID, "error", err)
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
	data := expenseListData{ProfileID: profileID, Currency: profile.PrimaryCurrency}
	for _, e := range expenses {
		data.Expenses = append(data.Expenses, expenseView{
			Expense:   e,
			PhaseName: phaseNames[e.PhaseID],
			Urgency:   services.ExpenseUrgency(e, today),
		})
	}

	s.renderTemplate(w, r, "expense_list.html", data)
}

// handleExpenseList serves the filterable expense fragment.
func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var f storage.ExpenseFilter
	if raw := core.PaymentStatus(sanitizeInput(r.URL.Query().Get("payment_status"))); raw.IsValid() {
		f.PaymentStatus = &raw
	}
	if raw := core.CostCertainty(sanitizeInput(r.URL.Query().Get("cost_certainty"))); raw.IsValid() {
		f.CostCertainty = &raw
	}

	s.renderExpenseList(w, r, profileID, f)
}

func (s *Server) handleExpenseCreate(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		errorFragment(w, http.StatusBadRequest, "malformed form")
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

	phaseID, err := parseFormInt64(r, "phase_id")
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, "a phase is required")
		return
	}
	estimated, err := parseCents(r.FormValue("estimated_amount"))
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	due, err := parseOptionalDate(r.FormValue("due_date"))
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, "invalid due date, use YYYY-MM-DD")
		return
	}

	var relatedTask *int64
	if raw := sanitizeInput(r.FormValue("related_task_id")); raw != "" {
		taskID, err := parseFormInt64(r, "related_task_id")
		if err != nil {
			errorFragment(w, http.StatusUnprocessableEntity, "invalid related task")
			return
		}
		relatedTask = &taskID
	}

	e := core.Expense{
		ProfileID:       profileID,
		PhaseID:         phaseID,
		RelatedTaskID:   relatedTask,
		Title:           sanitizeInput(r.FormValue("title")),
		Category:        sanitizeInput(r.FormValue("category")),
		EstimatedAmount: core.Money{Cents: estimated},
		Currency:        strings.ToUpper(sanitizeInput(r.FormValue("currency"))),
		CostCertainty:   core.CostCertainty(sanitizeInput(r.FormValue("cost_certainty"))),
		IncludeInBudget: parseCheckbox(r.FormValue("include_in_budget")),
		OneTimeCost:     parseCheckbox(r.FormValue("one_time_cost")),
		DueDate:         due,
		Notes:           sanitizeInput(r.FormValue("notes")),
	}
	if e.Currency == "" {
		e.Currency = profile.PrimaryCurrency
	}

	rate, notice, err := s.resolveExchangeRate(ctx, e.Currency, profile.PrimaryCurrency, r.FormValue("exchange_rate"))
	if err != nil {
		errorFragment(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	e.ExchangeRate = rate

	if _, err := s.expenses.CreateExpense(ctx, e); err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, services.ErrPhaseNotFound), errors.Is(err, services.ErrTaskNotFound):
			status = http.StatusNotFound
		case errors.Is(err, services.ErrPhaseOwnership), errors.Is(err, services.ErrTaskOwnership):
			status = http.StatusConflict
		}
		errorFragment(w, status, err.Error())
		return
	}

	resp := NewHTMXResponse(w).
		Trigger("expense:changed").
		Trigger("budget:changed").
		Notify("success", "Expense added")
	if notice != "" {
		resp.Notify("warning", notice)
	}
	resp.Apply()
	s.renderExpenseList(w, r, profileID, storage.ExpenseFilter{})
}

// resolveExchangeRate picks the stored rate for a new expense: a manually
// entered rate wins, a cross-currency expense without one gets the live
// rate, and a provider outage leaves the rate unset with a user notice.
func (s *Server) resolveExchangeRate(ctx context.Context, expenseCurrency, primaryCurrency, manual string) (*core.Rate, string, error) {
	if rate, ok, err := currency.ParseManualRate(manual); err != nil {
		return nil, "", err
	} else if ok {
		return &rate, "", nil
	}

	if expenseCurrency == primaryCurrency {
		return nil, "", nil
	}

	rate, err := s.rates.ExchangeRate(ctx, expenseCurrency, primaryCurrency)
	if err != nil {
		slog.WarnContext(ctx, "Exchange rate autofill failed",
			"component", "http",
			"from", expenseCurrency,
			"to", primaryCurrency,
			"error", err)
		return nil, "Exchange rate unavailable, expense saved without one", nil
	}
	return &rate, "", nil
}

func (s *Server) handleExpensePay(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	expense, err := s.expenses.MarkPaid(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrExpenseNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to mark expense paid", "component", "http", "expense_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	NewHTMXResponse(w).
		Trigger("expense:changed").
		Trigger("budget:changed").
		Notify("success", "Expense marked paid").
		Apply()
	s.renderExpenseList(w, r, expense.ProfileID, storage.ExpenseFilter{})
}

func (s *Server) handleExpenseDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	expense, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expense", "component", "http", "expense_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if expense == nil {
		http.NotFound(w, r)
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrExpenseNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense", "component", "http", "expense_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	NewHTMXResponse(w).
		Trigger("expense:changed").
		Trigger("budget:changed").
		Notify("success", "Expense deleted").
		Apply()
	s.renderExpenseList(w, r, expense.ProfileID, storage.ExpenseFilter{})
}

type budgetSummaryData struct {
	ProfileID int64
	Currency  string
	Summary   core.BudgetSummary
}

// handleBudgetSummary serves the cached budget fragment the detail page
// refreshes on every budget:changed event.
func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := s.budgetSummary(ctx, profileID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compute budget summary", "component", "http", "profile_id", profileID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, r, "budget_summary.html", budgetSummaryData{
		ProfileID: profileID,
		Currency:  profile.PrimaryCurrency,
		Summary:   summary,
	})
}
