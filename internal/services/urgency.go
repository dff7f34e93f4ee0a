// Package services provides business logic and orchestration between the
// surfaces (web, menu, workers) and storage.
//
// This file implements the strategy registry for urgency classification.
// Each urgency level has its own predicate over the due date, used by the
// dashboard badges and the reminder digest.
package services

import (
	"relocationos/internal/core"
)

type UrgencyLevel string

const (
	UrgencyOverdue UrgencyLevel = "overdue"
	UrgencyDueSoon UrgencyLevel = "due_soon"
	UrgencyOnTrack UrgencyLevel = "on_track"
)

// DueSoonWindowDays is how far ahead a date counts as due soon.
const DueSoonWindowDays = 7

// UrgencyChecker is the strategy interface for one urgency level.
type UrgencyChecker interface {
	// Matches reports whether a due date falls into this level today.
	Matches(due, today core.Date) bool
}

// OverdueChecker matches dates strictly before today.
type OverdueChecker struct{}

func (OverdueChecker) Matches(due, today core.Date) bool {
	return due.Before(today.Time)
}

// DueSoonChecker matches dates from today through the due-soon window.
type DueSoonChecker struct{}

func (DueSoonChecker) Matches(due, today core.Date) bool {
	if due.Before(today.Time) {
		return false
	}
	limit := today.AddDate(0, 0, DueSoonWindowDays)
	return !due.After(limit)
}

// OnTrackChecker matches everything beyond the due-soon window.
type OnTrackChecker struct{}

func (OnTrackChecker) Matches(due, today core.Date) bool {
	return due.After(today.AddDate(0, 0, DueSoonWindowDays))
}

// urgencyStrategies is evaluated in order; the first match wins.
var urgencyStrategies = []struct {
	level   UrgencyLevel
	checker UrgencyChecker
}{
	{UrgencyOverdue, OverdueChecker{}},
	{UrgencyDueSoon, DueSoonChecker{}},
	{UrgencyOnTrack, OnTrackChecker{}},
}

// ClassifyDate maps a due date to its urgency level. Items without a due
// date are on track: nothing to be late against.
func ClassifyDate(due *core.Date, today core.Date) UrgencyLevel {
	if due == nil || due.IsEmpty() {
		return UrgencyOnTrack
	}
	for _, s := range urgencyStrategies {
		if s.checker.Matches(*due, today) {
			return s.level
		}
	}
	return UrgencyOnTrack
}

// TaskUrgency classifies a task by its planned date. Completed tasks are
// always on track regardless of date.
func TaskUrgency(t core.Task, today core.Date) UrgencyLevel {
	if t.Status == core.TaskCompleted {
		return UrgencyOnTrack
	}
	return ClassifyDate(t.PlannedDate, today)
}

// ExpenseUrgency classifies an expense by its due date. Paid expenses are
// always on track.
func ExpenseUrgency(e core.Expense, today core.Date) UrgencyLevel {
	if e.PaymentStatus == core.PaymentPaid {
		return UrgencyOnTrack
	}
	return ClassifyDate(e.DueDate, today)
}
