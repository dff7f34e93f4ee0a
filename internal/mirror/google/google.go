// Package google mirrors profile budgets into a Google spreadsheet, one
// tab per profile, authenticated with a service account.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"relocationos/internal/currency"
	"relocationos/internal/mirror"
)

type Target struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// New creates a Sheets mirror from service account credentials JSON.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Target, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Target{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (t *Target) Name() string { return "google" }

// WriteSnapshot replaces the profile's tab with the snapshot contents,
// creating the tab on first write.
func (t *Target) WriteSnapshot(ctx context.Context, snap mirror.Snapshot) error {
	if t.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheetName := tabName(snap.Profile.ID)
	if _, err := t.ensureSheet(ctx, sheetName); err != nil {
		return err
	}

	clearRange := fmt.Sprintf("%s!A:Z", sheetName)
	_, err := t.svc.Spreadsheets.Values.Clear(t.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rows := snapshotRows(snap)
	writeRange := fmt.Sprintf("%s!A1", sheetName)
	_, err = t.svc.Spreadsheets.Values.Update(t.spreadsheetID, writeRange, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Mirrored budget to spreadsheet",
		"component", "mirror",
		"mirror", t.Name(),
		"profile_id", snap.Profile.ID,
		"sheet", sheetName,
		"rows", len(rows))
	return nil
}

// RemoveProfile deletes the profile's tab if it exists.
func (t *Target) RemoveProfile(ctx context.Context, profileID int64) error {
	if t.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheetID, ok, err := t.findSheet(ctx, tabName(profileID))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{
			{DeleteSheet: &gsheet.DeleteSheetRequest{SheetId: sheetID}},
		},
	}
	if _, err := t.svc.Spreadsheets.BatchUpdate(t.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete sheet for profile %d: %w", profileID, err)
	}

	slog.InfoContext(ctx, "Removed profile tab from spreadsheet",
		"component", "mirror",
		"mirror", t.Name(),
		"profile_id", profileID)
	return nil
}

func (t *Target) ensureSheet(ctx context.Context, name string) (int64, error) {
	sheetID, ok, err := t.findSheet(ctx, name)
	if err != nil {
		return 0, err
	}
	if ok {
		return sheetID, nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{
			{AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			}},
		},
	}
	resp, err := t.svc.Spreadsheets.BatchUpdate(t.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %s: %w", name, err)
	}
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			return r.AddSheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("add sheet %s: no sheet id in response", name)
}

func (t *Target) findSheet(ctx context.Context, name string) (int64, bool, error) {
	ss, err := t.svc.Spreadsheets.Get(t.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == name {
			return sheet.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

func tabName(profileID int64) string {
	return fmt.Sprintf("Profile %d", profileID)
}

// snapshotRows flattens a snapshot into one tab: a summary block followed
// by the expense table.
func snapshotRows(snap mirror.Snapshot) [][]interface{} {
	cur := snap.Profile.PrimaryCurrency
	rows := [][]interface{}{
		{"Relocation", snap.Profile.RelocationName},
		{"Route", snap.Profile.OriginCountry + " -> " + snap.Profile.DestinationCountry},
		{"Total estimated", currency.FormatAmount(snap.Summary.EstimatedCents, cur)},
		{"Total paid", currency.FormatAmount(snap.Summary.PaidCents, cur)},
		{"Remaining", currency.FormatAmount(snap.Summary.RemainingCents, cur)},
		{"Generated", snap.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		{},
		{"Title", "Category", "Estimated", "Actual", "Currency", "Payment", "Due date"},
	}

	for _, e := range snap.Expenses {
		actual := ""
		if e.ActualAmount != nil {
			actual = fmt.Sprintf("%.2f", float64(e.ActualAmount.Cents)/100)
		}
		due := ""
		if e.DueDate != nil {
			due = e.DueDate.String()
		}
		rows = append(rows, []interface{}{
			e.Title,
			e.Category,
			fmt.Sprintf("%.2f", float64(e.EstimatedAmount.Cents)/100),
			actual,
			e.Currency,
			string(e.PaymentStatus),
			due,
		})
	}
	return rows
}
