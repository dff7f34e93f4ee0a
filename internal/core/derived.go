package core

// Derived expense values. These are computed from stored fields on every
// read and are never persisted; anything date-sensitive takes the current
// date as an explicit argument so callers control the clock.

// EffectiveAmount returns the actual amount when one has been recorded,
// otherwise the estimate.
func (e Expense) EffectiveAmount() Money {
	if e.ActualAmount != nil {
		return *e.ActualAmount
	}
	return e.EstimatedAmount
}

// Variance returns how far the actual amount ran over or under the
// estimate, in major currency units. The second return is false until an
// actual amount exists.
func (e Expense) Variance() (float64, bool) {
	if e.ActualAmount == nil {
		return 0, false
	}
	return float64(e.ActualAmount.Cents-e.EstimatedAmount.Cents) / 100.0, true
}

// IsOverdue reports whether the expense has a due date strictly in the
// past and has not been paid.
func (e Expense) IsOverdue(today Date) bool {
	if e.DueDate == nil || e.DueDate.IsEmpty() {
		return false
	}
	return e.DueDate.Before(today.Time) && e.PaymentStatus != PaymentPaid
}

// TotalPrimaryCurrency converts the effective amount into the profile's
// primary currency using the stored rate. When no rate is stored the
// amount is assumed to already be in the primary currency.
func (e Expense) TotalPrimaryCurrency() float64 {
	amount := e.EffectiveAmount().Cents
	if e.ExchangeRate != nil {
		return float64(amount) * float64(*e.ExchangeRate) / RateScale
	}
	return float64(amount) / 100.0
}
