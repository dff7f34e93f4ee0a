package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

const (
	CostUnknown   CostCertainty = "unknown"
	CostEstimated CostCertainty = "estimated"
	CostConfirmed CostCertainty = "confirmed"
)

// RateScale is the fixed-point scale for exchange rates: a stored rate of
// 9200 means 0.9200. ParityRate is the identity rate (1.0).
const (
	RateScale  = 10000
	ParityRate Rate = RateScale
)

type (
	TaskStatus    string
	PaymentStatus string
	CostCertainty string

	// Rate is an exchange rate scaled by RateScale.
	Rate int64

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Profile is one relocation project: a move from one country to another.
	Profile struct {
		ID                 int64
		RelocationName     string
		OriginCountry      string
		DestinationCountry string
		TargetArrivalDate  *Date
		FamilySize         int
		NumberOfChildren   int
		Pets               bool
		PrimaryCurrency    string
		SecondaryCurrency  string
		Notes              string
		CreatedAt          time.Time
		UpdatedAt          time.Time
	}

	// Phase is a named window on a profile's timeline, expressed in month
	// offsets relative to the arrival date.
	Phase struct {
		ID                 int64
		ProfileID          int64
		Name               string
		Description        string
		RelativeStartMonth int
		RelativeEndMonth   int
		OrderIndex         int
		CreatedAt          time.Time
	}

	Task struct {
		ID            int64
		ProfileID     int64
		PhaseID       int64
		Title         string
		Description   string
		Status        TaskStatus
		Critical      bool
		PlannedDate   *Date
		CompletedDate *Date
		Notes         string
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	Expense struct {
		ID              int64
		ProfileID       int64
		PhaseID         int64
		RelatedTaskID   *int64
		Title           string
		Category        string
		EstimatedAmount Money
		ActualAmount    *Money
		Currency        string
		ExchangeRate    *Rate
		CostCertainty   CostCertainty
		PaymentStatus   PaymentStatus
		IncludeInBudget bool
		OneTimeCost     bool
		DueDate         *Date
		Notes           string
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	Category struct {
		ID          int64
		ProfileID   int64
		Name        string
		Description string
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyTitle       = errors.New("empty title")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidCertainty = errors.New("invalid cost certainty")
	ErrInvalidPayment   = errors.New("invalid payment status")
	ErrPhaseWindow      = errors.New("phase start month must be before end month")
)

const dateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// IsEmpty returns true if the date is zero (optional dates left unset).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid:
		return true
	}
	return false
}

func (c CostCertainty) IsValid() bool {
	switch c {
	case CostUnknown, CostEstimated, CostConfirmed:
		return true
	}
	return false
}

// ValidCurrencyCode reports whether s looks like an ISO 4217 code
// (exactly three ASCII uppercase letters).
func ValidCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.RelocationName) == "" {
		return ErrEmptyName
	}
	if len(p.RelocationName) > 200 {
		return errors.New("relocation name too long (max 200 characters)")
	}
	if strings.TrimSpace(p.OriginCountry) == "" {
		return errors.New("empty origin country")
	}
	if strings.TrimSpace(p.DestinationCountry) == "" {
		return errors.New("empty destination country")
	}
	if p.FamilySize < 1 {
		return errors.New("family size must be at least 1")
	}
	if p.NumberOfChildren < 0 {
		return errors.New("number of children cannot be negative")
	}
	if !ValidCurrencyCode(p.PrimaryCurrency) {
		return ErrInvalidCurrency
	}
	if p.SecondaryCurrency != "" && !ValidCurrencyCode(p.SecondaryCurrency) {
		return ErrInvalidCurrency
	}
	return nil
}

func (p Phase) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("phase name too long (max 200 characters)")
	}
	if p.RelativeStartMonth >= p.RelativeEndMonth {
		return ErrPhaseWindow
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("task title too long (max 200 characters)")
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("expense title too long (max 200 characters)")
	}
	if e.EstimatedAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if e.ActualAmount != nil && e.ActualAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !ValidCurrencyCode(e.Currency) {
		return ErrInvalidCurrency
	}
	if e.ExchangeRate != nil && *e.ExchangeRate <= 0 {
		return ErrInvalidRate
	}
	if !e.CostCertainty.IsValid() {
		return ErrInvalidCertainty
	}
	if !e.PaymentStatus.IsValid() {
		return ErrInvalidPayment
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("category name too long (max 200 characters)")
	}
	return nil
}
