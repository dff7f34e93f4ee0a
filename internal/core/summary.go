package core

// BudgetSummary aggregates the budget-included expenses of one profile.
// The float fields are major currency units, converted once from cent
// totals after summation. The *Cents fields carry the exact totals so
// rendering never reconverts through floats (a 57-cent total would come
// back as 56 through float64(57)/100*100).
type BudgetSummary struct {
	TotalEstimated    float64
	TotalActual       float64
	TotalPaid         float64
	Remaining         float64
	EstimatedCents    int64
	ActualCents       int64
	PaidCents         int64
	RemainingCents    int64
	BudgetProgressPct float64
	OverdueCount      int
	UnknownCostCount  int
	OverBudgetCount   int
	TotalExpenses     int
}

// ComputeBudgetSummary sums the expenses flagged include-in-budget.
// Expenses outside the budget contribute nothing, not even to the counts.
func ComputeBudgetSummary(expenses []Expense, today Date) BudgetSummary {
	var s BudgetSummary
	var estimatedCents, actualCents, paidCents int64

	for _, e := range expenses {
		if !e.IncludeInBudget {
			continue
		}
		s.TotalExpenses++
		estimatedCents += e.EstimatedAmount.Cents
		if e.ActualAmount != nil {
			actualCents += e.ActualAmount.Cents
		}
		if e.PaymentStatus == PaymentPaid {
			paidCents += e.EffectiveAmount().Cents
		}
		if e.IsOverdue(today) {
			s.OverdueCount++
		}
		if e.CostCertainty == CostUnknown {
			s.UnknownCostCount++
		}
		if v, ok := e.Variance(); ok && v > 0 {
			s.OverBudgetCount++
		}
	}

	s.EstimatedCents = estimatedCents
	s.ActualCents = actualCents
	s.PaidCents = paidCents
	s.RemainingCents = estimatedCents - paidCents

	s.TotalEstimated = float64(estimatedCents) / 100.0
	s.TotalActual = float64(actualCents) / 100.0
	s.TotalPaid = float64(paidCents) / 100.0
	s.Remaining = float64(estimatedCents-paidCents) / 100.0
	if estimatedCents > 0 {
		s.BudgetProgressPct = float64(paidCents) / float64(estimatedCents) * 100.0
	}
	return s
}
