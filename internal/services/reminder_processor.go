package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"relocationos/internal/core"
	"relocationos/internal/storage"
)

// ReminderItem is one overdue or due-soon task or expense in a digest.
type ReminderItem struct {
	ProfileID   int64
	ProfileName string
	Title       string
	Due         core.Date
	Urgency     UrgencyLevel
}

// Digest summarizes everything that needs attention across all profiles.
type Digest struct {
	GeneratedAt     time.Time
	OverdueTasks    []ReminderItem
	DueSoonTasks    []ReminderItem
	OverdueExpenses []ReminderItem
	DueSoonExpenses []ReminderItem
}

// IsEmpty reports whether nothing needs attention.
func (d *Digest) IsEmpty() bool {
	return len(d.OverdueTasks) == 0 && len(d.DueSoonTasks) == 0 &&
		len(d.OverdueExpenses) == 0 && len(d.DueSoonExpenses) == 0
}

// ReminderProcessor scans all profiles and produces a digest of overdue
// and due-soon tasks and expenses. Run periodically by the reminder
// worker.
type ReminderProcessor struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewReminderProcessor(storage *storage.SQLiteRepository) *ReminderProcessor {
	return &ReminderProcessor{storage: storage, now: time.Now}
}

// BuildDigest collects every dated, open item whose urgency is overdue or
// due soon. Completed tasks and paid expenses never appear.
func (p *ReminderProcessor) BuildDigest(ctx context.Context) (*Digest, error) {
	profiles, err := p.storage.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	today := core.DateOf(p.now())
	digest := &Digest{GeneratedAt: p.now()}

	for _, profile := range profiles {
		tasks, err := p.storage.ListTasks(ctx, profile.ID, storage.TaskFilter{})
		if err != nil {
			return nil, fmt.Errorf("list tasks for profile %d: %w", profile.ID, err)
		}
		for _, t := range tasks {
			item := ReminderItem{
				ProfileID:   profile.ID,
				ProfileName: profile.RelocationName,
				Title:       t.Title,
			}
			if t.PlannedDate != nil {
				item.Due = *t.PlannedDate
			}
			switch item.Urgency = TaskUrgency(t, today); item.Urgency {
			case UrgencyOverdue:
				digest.OverdueTasks = append(digest.OverdueTasks, item)
			case UrgencyDueSoon:
				digest.DueSoonTasks = append(digest.DueSoonTasks, item)
			}
		}

		expenses, err := p.storage.ListExpenses(ctx, profile.ID, storage.ExpenseFilter{})
		if err != nil {
			return nil, fmt.Errorf("list expenses for profile %d: %w", profile.ID, err)
		}
		for _, e := range expenses {
			item := ReminderItem{
				ProfileID:   profile.ID,
				ProfileName: profile.RelocationName,
				Title:       e.Title,
			}
			if e.DueDate != nil {
				item.Due = *e.DueDate
			}
			switch item.Urgency = ExpenseUrgency(e, today); item.Urgency {
			case UrgencyOverdue:
				digest.OverdueExpenses = append(digest.OverdueExpenses, item)
			case UrgencyDueSoon:
				digest.DueSoonExpenses = append(digest.DueSoonExpenses, item)
			}
		}
	}

	return digest, nil
}

// Run builds a digest and logs it. Quiet when nothing needs attention.
func (p *ReminderProcessor) Run(ctx context.Context) error {
	digest, err := p.BuildDigest(ctx)
	if err != nil {
		return err
	}

	if digest.IsEmpty() {
		slog.InfoContext(ctx, "Reminder scan found nothing due",
			"component", "reminder")
		return nil
	}

	slog.InfoContext(ctx, "Reminder digest",
		"component", "reminder",
		"overdue_tasks", len(digest.OverdueTasks),
		"due_soon_tasks", len(digest.DueSoonTasks),
		"overdue_expenses", len(digest.OverdueExpenses),
		"due_soon_expenses", len(digest.DueSoonExpenses))

	for _, item := range digest.OverdueTasks {
		p.logItem(ctx, "task", item)
	}
	for _, item := range digest.DueSoonTasks {
		p.logItem(ctx, "task", item)
	}
	for _, item := range digest.OverdueExpenses {
		p.logItem(ctx, "expense", item)
	}
	for _, item := range digest.DueSoonExpenses {
		p.logItem(ctx, "expense", item)
	}
	return nil
}

func (p *ReminderProcessor) logItem(ctx context.Context, kind string, item ReminderItem) {
	slog.InfoContext(ctx, "Needs attention",
		"component", "reminder",
		"kind", kind,
		"urgency", string(item.Urgency),
		"profile_id", item.ProfileID,
		"profile", item.ProfileName,
		"title", item.Title,
		"due", item.Due.String())
}
