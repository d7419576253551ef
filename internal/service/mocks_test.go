package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"
)

// --- Mocks ---

type mockBackend struct {
	mu sync.Mutex

	transactions []domain.Transaction
	txErr        error

	allocations map[string]*domain.Allocation

	debtCredit    *domain.DebtCreditResult
	debtCreditErr error
	debtCalls     atomic.Int32

	units    []domain.BuildingUnit
	unitsErr error

	unitDebt    map[string]*domain.UnitDebt
	unitDebtErr error
	unitIDs     []string

	visibility *domain.VisibilitySettings
	toggleErr  error

	payResp *domain.PayBillResponse
	payErr  error
	paid    []*domain.PayBillRequest

	expenseResp *domain.ExpenseResponse
	expenseErr  error
	registered  []*domain.ExpenseRequest
	updated     []*domain.ExpenseRequest
	deleted     []string
}

func (m *mockBackend) ListTransactions(_ context.Context, _ string, _, _ time.Time) ([]domain.Transaction, error) {
	if m.txErr != nil {
		return nil, m.txErr
	}
	return append([]domain.Transaction(nil), m.transactions...), nil
}

func (m *mockBackend) GetExpenseAllocation(_ context.Context, id string) (*domain.Allocation, error) {
	if a, ok := m.allocations[id]; ok {
		return a, nil
	}
	return &domain.Allocation{}, nil
}

func (m *mockBackend) GetBuildingDebtCredit(_ context.Context, _ string) (*domain.DebtCreditResult, error) {
	m.debtCalls.Add(1)
	if m.debtCreditErr != nil {
		return nil, m.debtCreditErr
	}
	res := *m.debtCredit
	res.Units = append([]domain.BuildingUnit(nil), m.debtCredit.Units...)
	return &res, nil
}

func (m *mockBackend) GetUnitDebt(_ context.Context, unitID string) (*domain.UnitDebt, error) {
	m.mu.Lock()
	m.unitIDs = append(m.unitIDs, unitID)
	m.mu.Unlock()
	if m.unitDebtErr != nil {
		return nil, m.unitDebtErr
	}
	return m.unitDebt[unitID], nil
}

func (m *mockBackend) ListBuildingUnits(_ context.Context, _ string) ([]domain.BuildingUnit, error) {
	return m.units, m.unitsErr
}

func (m *mockBackend) GetVisibilitySettings(_ context.Context, buildingID string) (*domain.VisibilitySettings, error) {
	if m.visibility != nil {
		return m.visibility, nil
	}
	return &domain.VisibilitySettings{BuildingID: domain.FlexString(buildingID)}, nil
}

func (m *mockBackend) ToggleDebtCreditVisibility(_ context.Context, buildingID string, show bool) (*domain.VisibilitySettings, error) {
	if m.toggleErr != nil {
		return nil, m.toggleErr
	}
	return &domain.VisibilitySettings{BuildingID: domain.FlexString(buildingID), ShowToResidents: show}, nil
}

func (m *mockBackend) PayBill(_ context.Context, req *domain.PayBillRequest) (*domain.PayBillResponse, error) {
	m.mu.Lock()
	m.paid = append(m.paid, req)
	m.mu.Unlock()
	if m.payErr != nil {
		return nil, m.payErr
	}
	if m.payResp != nil {
		return m.payResp, nil
	}
	return &domain.PayBillResponse{Success: true, BillID: req.BillID}, nil
}

func (m *mockBackend) RegisterExpense(_ context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error) {
	m.mu.Lock()
	m.registered = append(m.registered, req)
	m.mu.Unlock()
	return m.expenseResult()
}

func (m *mockBackend) UpdateExpense(_ context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error) {
	m.mu.Lock()
	m.updated = append(m.updated, req)
	m.mu.Unlock()
	return m.expenseResult()
}

func (m *mockBackend) DeleteExpense(_ context.Context, id string) (*domain.ExpenseResponse, error) {
	m.mu.Lock()
	m.deleted = append(m.deleted, id)
	m.mu.Unlock()
	return m.expenseResult()
}

func (m *mockBackend) expenseResult() (*domain.ExpenseResponse, error) {
	if m.expenseErr != nil {
		return nil, m.expenseErr
	}
	if m.expenseResp != nil {
		return m.expenseResp, nil
	}
	return &domain.ExpenseResponse{Success: true, SharedBillID: "sb-1"}, nil
}

type memoryCatalogStore struct {
	mu      sync.Mutex
	types   []domain.ExpenseType
	loadErr error
	saves   int
}

func (m *memoryCatalogStore) Load(_ context.Context) ([]domain.ExpenseType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]domain.ExpenseType(nil), m.types...), nil
}

func (m *memoryCatalogStore) Save(_ context.Context, types []domain.ExpenseType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = append([]domain.ExpenseType(nil), types...)
	m.saves++
	return nil
}

type mockAdvisor struct {
	answer string
	err    error
	calls  int
}

func (m *mockAdvisor) Ask(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.answer, m.err
}
