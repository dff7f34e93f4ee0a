package core

// Per-entity update structs. Every field is optional: nil means "leave
// the stored value alone", a non-nil pointer means "set". The storage
// layer loads the row, applies the update, re-validates, and writes the
// merged row back in one transaction.

type ProfileUpdate struct {
	RelocationName     *string
	OriginCountry      *string
	DestinationCountry *string
	TargetArrivalDate  *Date
	FamilySize         *int
	NumberOfChildren   *int
	Pets               *bool
	PrimaryCurrency    *string
	SecondaryCurrency  *string
	Notes              *string
}

type PhaseUpdate struct {
	Name               *string
	Description        *string
	RelativeStartMonth *int
	RelativeEndMonth   *int
	OrderIndex         *int
}

type TaskUpdate struct {
	Title         *string
	Description   *string
	Status        *TaskStatus
	Critical      *bool
	PlannedDate   *Date
	CompletedDate *Date
	Notes         *string
}

type ExpenseUpdate struct {
	Title           *string
	Category        *string
	EstimatedAmount *Money
	ActualAmount    *Money
	Currency        *string
	ExchangeRate    *Rate
	CostCertainty   *CostCertainty
	PaymentStatus   *PaymentStatus
	IncludeInBudget *bool
	OneTimeCost     *bool
	DueDate         *Date
	Notes           *string
	RelatedTaskID   *int64
}

type CategoryUpdate struct {
	Name        *string
	Description *string
}

func (u ProfileUpdate) ApplyTo(p *Profile) {
	if u.RelocationName != nil {
		p.RelocationName = *u.RelocationName
	}
	if u.OriginCountry != nil {
		p.OriginCountry = *u.OriginCountry
	}
	if u.DestinationCountry != nil {
		p.DestinationCountry = *u.DestinationCountry
	}
	if u.TargetArrivalDate != nil {
		d := *u.TargetArrivalDate
		p.TargetArrivalDate = &d
	}
	if u.FamilySize != nil {
		p.FamilySize = *u.FamilySize
	}
	if u.NumberOfChildren != nil {
		p.NumberOfChildren = *u.NumberOfChildren
	}
	if u.Pets != nil {
		p.Pets = *u.Pets
	}
	if u.PrimaryCurrency != nil {
		p.PrimaryCurrency = *u.PrimaryCurrency
	}
	if u.SecondaryCurrency != nil {
		p.SecondaryCurrency = *u.SecondaryCurrency
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
}

func (u PhaseUpdate) ApplyTo(p *Phase) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.RelativeStartMonth != nil {
		p.RelativeStartMonth = *u.RelativeStartMonth
	}
	if u.RelativeEndMonth != nil {
		p.RelativeEndMonth = *u.RelativeEndMonth
	}
	if u.OrderIndex != nil {
		p.OrderIndex = *u.OrderIndex
	}
}

func (u TaskUpdate) ApplyTo(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Critical != nil {
		t.Critical = *u.Critical
	}
	if u.PlannedDate != nil {
		d := *u.PlannedDate
		t.PlannedDate = &d
	}
	if u.CompletedDate != nil {
		d := *u.CompletedDate
		t.CompletedDate = &d
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
}

func (u ExpenseUpdate) ApplyTo(e *Expense) {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.EstimatedAmount != nil {
		e.EstimatedAmount = *u.EstimatedAmount
	}
	if u.ActualAmount != nil {
		m := *u.ActualAmount
		e.ActualAmount = &m
	}
	if u.Currency != nil {
		e.Currency = *u.Currency
	}
	if u.ExchangeRate != nil {
		r := *u.ExchangeRate
		e.ExchangeRate = &r
	}
	if u.CostCertainty != nil {
		e.CostCertainty = *u.CostCertainty
	}
	if u.PaymentStatus != nil {
		e.PaymentStatus = *u.PaymentStatus
	}
	if u.IncludeInBudget != nil {
		e.IncludeInBudget = *u.IncludeInBudget
	}
	if u.OneTimeCost != nil {
		e.OneTimeCost = *u.OneTimeCost
	}
	if u.DueDate != nil {
		d := *u.DueDate
		e.DueDate = &d
	}
	if u.Notes != nil {
		e.Notes = *u.Notes
	}
	if u.RelatedTaskID != nil {
		id := *u.RelatedTaskID
		e.RelatedTaskID = &id
	}
}

func (u CategoryUpdate) ApplyTo(c *Category) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
}
