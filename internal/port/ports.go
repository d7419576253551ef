// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"
)

// BillingBackend is the building-management REST backend.
// Implementations forward the caller's bearer token found in ctx.
type BillingBackend interface {
	// Ledger
	ListTransactions(ctx context.Context, buildingID string, from, to time.Time) ([]domain.Transaction, error)
	GetExpenseAllocation(ctx context.Context, sharedBillID string) (*domain.Allocation, error)

	// Debt/credit
	GetBuildingDebtCredit(ctx context.Context, buildingID string) (*domain.DebtCreditResult, error)
	GetUnitDebt(ctx context.Context, unitID string) (*domain.UnitDebt, error)
	ListBuildingUnits(ctx context.Context, buildingID string) ([]domain.BuildingUnit, error)
	GetVisibilitySettings(ctx context.Context, buildingID string) (*domain.VisibilitySettings, error)
	ToggleDebtCreditVisibility(ctx context.Context, buildingID string, show bool) (*domain.VisibilitySettings, error)

	// Bills and expenses
	PayBill(ctx context.Context, req *domain.PayBillRequest) (*domain.PayBillResponse, error)
	RegisterExpense(ctx context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error)
	UpdateExpense(ctx context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error)
	DeleteExpense(ctx context.Context, sharedBillID string) (*domain.ExpenseResponse, error)
}

// AllocationFetcher is the slice of the backend the export pipeline needs.
type AllocationFetcher interface {
	GetExpenseAllocation(ctx context.Context, sharedBillID string) (*domain.Allocation, error)
}

// CatalogStore persists the user-extended expense-type catalog.
// Load returns only user-added entries; built-ins are never stored.
type CatalogStore interface {
	Load(ctx context.Context) ([]domain.ExpenseType, error)
	Save(ctx context.Context, types []domain.ExpenseType) error
}

// LegalAdvisor answers building-law questions.
type LegalAdvisor interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Update(key string, fn func(T) T) bool
	Delete(key string)
	DeletePrefix(prefix string) int
}
