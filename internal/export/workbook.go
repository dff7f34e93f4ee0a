// Package export renders profile snapshots as spreadsheet workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"relocationos/internal/currency"
	"relocationos/internal/mirror"
)

const (
	SheetSummary  = "Summary"
	SheetExpenses = "Expenses"
	SheetTasks    = "Tasks"
	SheetPhases   = "Phases"
)

// BuildWorkbook renders a snapshot as a four-sheet workbook: a budget
// summary plus one row per expense, task and phase. Callers own the
// returned file and must Close it.
func BuildWorkbook(snap mirror.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#B0B0B0", Style: 1},
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, snap, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeExpensesSheet(f, snap, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTasksSheet(f, snap, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writePhasesSheet(f, snap, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	// The default sheet is replaced by Summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(SheetSummary)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locate summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	return f, nil
}

func writeSummarySheet(f *excelize.File, snap mirror.Snapshot, headerStyle int) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	cur := snap.Profile.PrimaryCurrency
	arrival := ""
	if snap.Profile.TargetArrivalDate != nil {
		arrival = snap.Profile.TargetArrivalDate.String()
	}

	rows := [][]interface{}{
		{"Relocation", snap.Profile.RelocationName},
		{"Route", snap.Profile.OriginCountry + " -> " + snap.Profile.DestinationCountry},
		{"Target arrival", arrival},
		{"Primary currency", cur},
		{"Generated", snap.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		{},
		{"Total estimated", currency.FormatAmount(snap.Summary.EstimatedCents, cur)},
		{"Total actual", currency.FormatAmount(snap.Summary.ActualCents, cur)},
		{"Total paid", currency.FormatAmount(snap.Summary.PaidCents, cur)},
		{"Remaining", currency.FormatAmount(snap.Summary.RemainingCents, cur)},
		{"Budget progress", fmt.Sprintf("%.1f%%", snap.Summary.BudgetProgressPct)},
		{"Expenses in budget", snap.Summary.TotalExpenses},
		{"Overdue expenses", snap.Summary.OverdueCount},
		{"Unknown costs", snap.Summary.UnknownCostCount},
		{"Over budget", snap.Summary.OverBudgetCount},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	if err := f.SetCellStyle(SheetSummary, "A1", "A15", headerStyle); err != nil {
		return fmt.Errorf("style summary labels: %w", err)
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 22); err != nil {
		return fmt.Errorf("size summary columns: %w", err)
	}
	return f.SetColWidth(SheetSummary, "B", "B", 34)
}

func writeExpensesSheet(f *excelize.File, snap mirror.Snapshot, headerStyle int) error {
	headers := []interface{}{
		"Title", "Category", "Phase", "Estimated", "Actual", "Currency",
		"Certainty", "Payment", "In budget", "Due date", "Notes",
	}
	if err := newTableSheet(f, SheetExpenses, headers, headerStyle); err != nil {
		return err
	}

	phaseNames := phaseNameIndex(snap)
	for i, e := range snap.Expenses {
		actual := ""
		if e.ActualAmount != nil {
			actual = fmt.Sprintf("%.2f", float64(e.ActualAmount.Cents)/100)
		}
		due := ""
		if e.DueDate != nil {
			due = e.DueDate.String()
		}
		row := []interface{}{
			e.Title,
			e.Category,
			phaseNames[e.PhaseID],
			fmt.Sprintf("%.2f", float64(e.EstimatedAmount.Cents)/100),
			actual,
			e.Currency,
			string(e.CostCertainty),
			string(e.PaymentStatus),
			e.IncludeInBudget,
			due,
			e.Notes,
		}
		if err := writeTableRow(f, SheetExpenses, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetExpenses, "A", "C", 24); err != nil {
		return fmt.Errorf("size expense columns: %w", err)
	}
	return f.SetColWidth(SheetExpenses, "K", "K", 40)
}

func writeTasksSheet(f *excelize.File, snap mirror.Snapshot, headerStyle int) error {
	headers := []interface{}{
		"Title", "Phase", "Status", "Critical", "Planned", "Completed", "Notes",
	}
	if err := newTableSheet(f, SheetTasks, headers, headerStyle); err != nil {
		return err
	}

	phaseNames := phaseNameIndex(snap)
	for i, t := range snap.Tasks {
		planned := ""
		if t.PlannedDate != nil {
			planned = t.PlannedDate.String()
		}
		completed := ""
		if t.CompletedDate != nil {
			completed = t.CompletedDate.String()
		}
		row := []interface{}{
			t.Title,
			phaseNames[t.PhaseID],
			string(t.Status),
			t.Critical,
			planned,
			completed,
			t.Notes,
		}
		if err := writeTableRow(f, SheetTasks, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetTasks, "A", "B", 24)
}

func writePhasesSheet(f *excelize.File, snap mirror.Snapshot, headerStyle int) error {
	headers := []interface{}{
		"Order", "Name", "Start month", "End month", "Description",
	}
	if err := newTableSheet(f, SheetPhases, headers, headerStyle); err != nil {
		return err
	}

	for i, p := range snap.Phases {
		row := []interface{}{
			p.OrderIndex,
			p.Name,
			p.RelativeStartMonth,
			p.RelativeEndMonth,
			p.Description,
		}
		if err := writeTableRow(f, SheetPhases, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetPhases, "B", "B", 24); err != nil {
		return fmt.Errorf("size phase columns: %w", err)
	}
	return f.SetColWidth(SheetPhases, "E", "E", 40)
}

func newTableSheet(f *excelize.File, sheet string, headers []interface{}, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("%s header range: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}

func writeTableRow(f *excelize.File, sheet string, rowNum int, row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func phaseNameIndex(snap mirror.Snapshot) map[int64]string {
	names := make(map[int64]string, len(snap.Phases))
	for _, p := range snap.Phases {
		names[p.ID] = p.Name
	}
	return names
}
