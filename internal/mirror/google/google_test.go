package google

import (
	"context"
	"testing"
	"time"

	"relocationos/internal/core"
	"relocationos/internal/mirror"
)

func TestTabName(t *testing.T) {
	if got := tabName(12); got != "Profile 12" {
		t.Errorf("tabName(12) = %q, want %q", got, "Profile 12")
	}
}

func TestSnapshotRows(t *testing.T) {
	actual := core.Money{Cents: 9950}
	due := core.NewDate(2026, 5, 1)
	snap := mirror.Snapshot{
		Profile: core.Profile{
			ID: 1, RelocationName: "Tokyo move",
			OriginCountry: "FR", DestinationCountry: "JP",
			PrimaryCurrency: "EUR",
		},
		Expenses: []core.Expense{
			{
				Title: "Language course", Category: "education",
				EstimatedAmount: core.Money{Cents: 10000},
				ActualAmount:    &actual,
				Currency:        "EUR",
				PaymentStatus:   core.PaymentPaid,
				DueDate:         &due,
			},
		},
		Summary: core.BudgetSummary{
			TotalEstimated: 100, TotalPaid: 99.5, Remaining: 0.5,
			EstimatedCents: 10000, PaidCents: 9950, RemainingCents: 50,
		},
		GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	rows := snapshotRows(snap)

	// 8 header rows plus one per expense.
	if len(rows) != 9 {
		t.Fatalf("snapshotRows() returned %d rows, want 9", len(rows))
	}
	if rows[1][1] != "FR -> JP" {
		t.Errorf("route row = %v, want FR -> JP", rows[1][1])
	}
	if rows[2][1] != "€100.00" {
		t.Errorf("total estimated = %v, want €100.00", rows[2][1])
	}
	expense := rows[8]
	if expense[0] != "Language course" || expense[3] != "99.50" || expense[6] != "2026-05-01" {
		t.Errorf("expense row = %v", expense)
	}
}

func TestNewRejectsMissingInputs(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, "", []byte("{}")); err == nil {
		t.Error("New() with empty spreadsheet id should fail")
	}
	if _, err := New(ctx, "sheet-id", nil); err == nil {
		t.Error("New() with no credentials should fail")
	}
}
