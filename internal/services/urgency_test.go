package services

import (
	"testing"

	"relocationos/internal/core"
)

func TestClassifyDate(t *testing.T) {
	today := core.NewDate(2026, 3, 10)

	tests := []struct {
		name string
		due  *core.Date
		want UrgencyLevel
	}{
		{"nil date is on track", nil, UrgencyOnTrack},
		{"yesterday is overdue", datePtr(2026, 3, 9), UrgencyOverdue},
		{"last month is overdue", datePtr(2026, 2, 1), UrgencyOverdue},
		{"today is due soon", datePtr(2026, 3, 10), UrgencyDueSoon},
		{"in 7 days is due soon", datePtr(2026, 3, 17), UrgencyDueSoon},
		{"in 8 days is on track", datePtr(2026, 3, 18), UrgencyOnTrack},
		{"next year is on track", datePtr(2027, 1, 1), UrgencyOnTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyDate(tt.due, today); got != tt.want {
				t.Errorf("ClassifyDate(%v) = %v, want %v", tt.due, got, tt.want)
			}
		})
	}
}

func TestTaskUrgency(t *testing.T) {
	today := core.NewDate(2026, 3, 10)

	overdue := core.Task{Status: core.TaskInProgress, PlannedDate: datePtr(2026, 3, 1)}
	if got := TaskUrgency(overdue, today); got != UrgencyOverdue {
		t.Errorf("TaskUrgency(overdue task) = %v, want %v", got, UrgencyOverdue)
	}

	completed := core.Task{Status: core.TaskCompleted, PlannedDate: datePtr(2026, 3, 1)}
	if got := TaskUrgency(completed, today); got != UrgencyOnTrack {
		t.Errorf("TaskUrgency(completed task) = %v, want %v", got, UrgencyOnTrack)
	}

	undated := core.Task{Status: core.TaskNotStarted}
	if got := TaskUrgency(undated, today); got != UrgencyOnTrack {
		t.Errorf("TaskUrgency(undated task) = %v, want %v", got, UrgencyOnTrack)
	}
}

func TestExpenseUrgency(t *testing.T) {
	today := core.NewDate(2026, 3, 10)

	unpaid := core.Expense{PaymentStatus: core.PaymentUnpaid, DueDate: datePtr(2026, 3, 12)}
	if got := ExpenseUrgency(unpaid, today); got != UrgencyDueSoon {
		t.Errorf("ExpenseUrgency(unpaid due soon) = %v, want %v", got, UrgencyDueSoon)
	}

	paid := core.Expense{PaymentStatus: core.PaymentPaid, DueDate: datePtr(2026, 3, 1)}
	if got := ExpenseUrgency(paid, today); got != UrgencyOnTrack {
		t.Errorf("ExpenseUrgency(paid overdue) = %v, want %v", got, UrgencyOnTrack)
	}
}

func datePtr(year, month, day int) *core.Date {
	d := core.NewDate(year, month, day)
	return &d
}
