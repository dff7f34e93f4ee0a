// Package menu implements the interactive text interface over the same
// services the web server uses.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"relocationos/internal/core"
	"relocationos/internal/currency"
	"relocationos/internal/services"
)

type Menu struct {
	in       *bufio.Scanner
	out      io.Writer
	profiles *services.ProfileService
	expenses *services.ExpenseService
}

func New(in io.Reader, out io.Writer, profiles *services.ProfileService, expenses *services.ExpenseService) *Menu {
	return &Menu{
		in:       bufio.NewScanner(in),
		out:      out,
		profiles: profiles,
		expenses: expenses,
	}
}

// Run loops until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out)
		fmt.Fprintln(m.out, "Relocation OS")
		fmt.Fprintln(m.out, "  1) Create profile")
		fmt.Fprintln(m.out, "  2) List profiles")
		fmt.Fprintln(m.out, "  3) Profile details")
		fmt.Fprintln(m.out, "  4) Exit")

		choice, ok := m.prompt("Choose an option")
		if !ok {
			return nil
		}

		var err error
		switch strings.TrimSpace(choice) {
		case "1":
			err = m.createProfile(ctx)
		case "2":
			err = m.listProfiles(ctx)
		case "3":
			err = m.profileDetails(ctx)
		case "4":
			fmt.Fprintln(m.out, "Bye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Unknown option, pick 1-4.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(m.out, "Error: %v\n", err)
		}
	}
}

func (m *Menu) createProfile(ctx context.Context) error {
	name, ok := m.prompt("Relocation name")
	if !ok {
		return io.EOF
	}
	origin, ok := m.prompt("Origin country")
	if !ok {
		return io.EOF
	}
	destination, ok := m.prompt("Destination country")
	if !ok {
		return io.EOF
	}
	arrival, ok := m.promptDate("Target arrival (YYYY-MM-DD, blank to skip)")
	if !ok {
		return io.EOF
	}
	familySize, ok := m.promptInt("Family size", 1)
	if !ok {
		return io.EOF
	}
	children, ok := m.promptInt("Number of children", 0)
	if !ok {
		return io.EOF
	}
	pets, ok := m.promptBool("Pets (y/n)", false)
	if !ok {
		return io.EOF
	}
	primary, ok := m.promptDefault("Primary currency", "EUR")
	if !ok {
		return io.EOF
	}
	secondary, ok := m.promptDefault("Secondary currency (blank for none)", "")
	if !ok {
		return io.EOF
	}
	notes, ok := m.promptDefault("Notes", "")
	if !ok {
		return io.EOF
	}

	created, err := m.profiles.CreateProfile(ctx, core.Profile{
		RelocationName:     name,
		OriginCountry:      origin,
		DestinationCountry: destination,
		TargetArrivalDate:  arrival,
		FamilySize:         familySize,
		NumberOfChildren:   children,
		Pets:               pets,
		PrimaryCurrency:    strings.ToUpper(primary),
		SecondaryCurrency:  strings.ToUpper(secondary),
		Notes:              notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Created profile %d: %s\n", created.ID, created.RelocationName)
	return nil
}

func (m *Menu) listProfiles(ctx context.Context) error {
	profiles, err := m.profiles.ListProfiles(ctx)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Fprintln(m.out, "No profiles yet.")
		return nil
	}

	w := tabwriter.NewWriter(m.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tROUTE\tARRIVAL\tFAMILY\tCURRENCY")
	for _, p := range profiles {
		arrival := "-"
		if p.TargetArrivalDate != nil && !p.TargetArrivalDate.IsEmpty() {
			arrival = p.TargetArrivalDate.String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s -> %s\t%s\t%d\t%s\n",
			p.ID, p.RelocationName, p.OriginCountry, p.DestinationCountry,
			arrival, p.FamilySize, p.PrimaryCurrency)
	}
	return w.Flush()
}

func (m *Menu) profileDetails(ctx context.Context) error {
	id, ok := m.promptInt64("Profile id")
	if !ok {
		return io.EOF
	}

	profile, err := m.profiles.GetProfile(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		fmt.Fprintf(m.out, "No profile with id %d.\n", id)
		return nil
	}

	fmt.Fprintf(m.out, "\n%s\n", profile.RelocationName)
	fmt.Fprintf(m.out, "  Route: %s -> %s\n", profile.OriginCountry, profile.DestinationCountry)
	if profile.TargetArrivalDate != nil && !profile.TargetArrivalDate.IsEmpty() {
		fmt.Fprintf(m.out, "  Arrival: %s\n", profile.TargetArrivalDate)
	}
	fmt.Fprintf(m.out, "  Family: %d (%d children", profile.FamilySize, profile.NumberOfChildren)
	if profile.Pets {
		fmt.Fprint(m.out, ", pets")
	}
	fmt.Fprintln(m.out, ")")
	if profile.Notes != "" {
		fmt.Fprintf(m.out, "  Notes: %s\n", profile.Notes)
	}

	phases, err := m.profiles.ListPhases(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nPhases:")
	if len(phases) == 0 {
		fmt.Fprintln(m.out, "  (none)")
	}
	for _, ph := range phases {
		fmt.Fprintf(m.out, "  %d. %s (month %d to %d)\n",
			ph.OrderIndex, ph.Name, ph.RelativeStartMonth, ph.RelativeEndMonth)
	}

	summary, err := m.expenses.BudgetSummary(ctx, id)
	if err != nil {
		return err
	}
	cur := profile.PrimaryCurrency
	fmt.Fprintln(m.out, "\nBudget:")
	fmt.Fprintf(m.out, "  Estimated: %s\n", currency.FormatAmount(summary.EstimatedCents, cur))
	fmt.Fprintf(m.out, "  Paid:      %s\n", currency.FormatAmount(summary.PaidCents, cur))
	fmt.Fprintf(m.out, "  Remaining: %s\n", currency.FormatAmount(summary.RemainingCents, cur))
	fmt.Fprintf(m.out, "  Progress:  %.0f%% of %d expenses, %d overdue\n",
		summary.BudgetProgressPct, summary.TotalExpenses, summary.OverdueCount)
	return nil
}

// prompt reads one required line, re-prompting on blank input.
func (m *Menu) prompt(label string) (string, bool) {
	for {
		fmt.Fprintf(m.out, "%s: ", label)
		if !m.in.Scan() {
			return "", false
		}
		if v := strings.TrimSpace(m.in.Text()); v != "" {
			return v, true
		}
		fmt.Fprintln(m.out, "A value is required.")
	}
}

// promptDefault reads one line, blank accepting the default.
func (m *Menu) promptDefault(label, def string) (string, bool) {
	if def != "" {
		fmt.Fprintf(m.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(m.out, "%s: ", label)
	}
	if !m.in.Scan() {
		return "", false
	}
	v := strings.TrimSpace(m.in.Text())
	if v == "" {
		return def, true
	}
	return v, true
}

func (m *Menu) promptInt(label string, def int) (int, bool) {
	for {
		fmt.Fprintf(m.out, "%s [%d]: ", label, def)
		if !m.in.Scan() {
			return 0, false
		}
		raw := strings.TrimSpace(m.in.Text())
		if raw == "" {
			return def, true
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(m.out, "Enter a whole number.")
			continue
		}
		return v, true
	}
}

func (m *Menu) promptInt64(label string) (int64, bool) {
	for {
		fmt.Fprintf(m.out, "%s: ", label)
		if !m.in.Scan() {
			return 0, false
		}
		v, err := strconv.ParseInt(strings.TrimSpace(m.in.Text()), 10, 64)
		if err != nil {
			fmt.Fprintln(m.out, "Enter a whole number.")
			continue
		}
		return v, true
	}
}

func (m *Menu) promptDate(label string) (*core.Date, bool) {
	for {
		fmt.Fprintf(m.out, "%s: ", label)
		if !m.in.Scan() {
			return nil, false
		}
		raw := strings.TrimSpace(m.in.Text())
		if raw == "" {
			return nil, true
		}
		d, err := core.ParseDate(raw)
		if err != nil {
			fmt.Fprintln(m.out, "Enter a date as YYYY-MM-DD.")
			continue
		}
		return &d, true
	}
}

func (m *Menu) promptBool(label string, def bool) (bool, bool) {
	for {
		hint := "y/N"
		if def {
			hint = "Y/n"
		}
		fmt.Fprintf(m.out, "%s [%s]: ", label, hint)
		if !m.in.Scan() {
			return false, false
		}
		switch strings.ToLower(strings.TrimSpace(m.in.Text())) {
		case "":
			return def, true
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		}
		fmt.Fprintln(m.out, "Answer y or n.")
	}
}
