package domain

import (
	"context"
	"time"
)

// ============================================================
// Filter specification
// ============================================================

// ViewMode selects which slice of the ledger the caller is looking at.
type ViewMode string

const (
	ViewBuilding ViewMode = "building"
	ViewUnit     ViewMode = "unit"
	ViewCharge   ViewMode = "charge"
)

// CategoryAll matches every transaction.
const CategoryAll = "all"

// DateRange bounds are civil days; either may be zero (unbounded).
type DateRange struct {
	From time.Time
	To   time.Time
}

// AmountRange bounds are optional.
type AmountRange struct {
	Min *float64
	Max *float64
}

// FilterSpec is the per-request filter state. It is never persisted.
type FilterSpec struct {
	Category    string
	SearchTerm  string
	DateRange   *DateRange
	AmountRange AmountRange
	ViewMode    ViewMode
}

// ============================================================
// Expense-type catalog
// ============================================================

// ExpenseType is one entry of the expense-type catalog.
type ExpenseType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ============================================================
// Caller identity
// ============================================================

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID   string
	Username string
	Phone    string
	Role     string
	Token    string
}

// IsManager reports whether the caller manages the building.
func (c Caller) IsManager() bool {
	return c.Role == "manager"
}

type callerKey struct{}

// WithCaller stores the caller in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
