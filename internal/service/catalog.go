package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/port"
	"github.com/melking/melking-bfa-go/internal/taxonomy"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgTypeLabelRequired = "نام نوع هزینه الزامی است."
	msgTypeReserved      = "این مقدار برای نوع هزینه مجاز نیست."
	msgTypeExists        = "این نوع هزینه قبلاً ثبت شده است."
)

// CatalogService owns the expense-type catalog: the built-in types plus the
// ones users add, which are persisted through the store.
type CatalogService struct {
	mu     sync.Mutex
	store  port.CatalogStore
	logger *zap.Logger
}

// NewCatalogService creates the catalog service backed by store.
func NewCatalogService(store port.CatalogStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

func (s *CatalogService) load(ctx context.Context) (*taxonomy.Catalog, error) {
	stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading expense types: %w", err)
	}
	return taxonomy.NewCatalog(stored), nil
}

// ListExpenseTypes returns every expense type, built-ins first.
func (s *CatalogService) ListExpenseTypes(ctx context.Context) ([]domain.ExpenseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Types(), nil
}

// Categories returns the filter categories: "all" followed by every type.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.ExpenseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Categories(), nil
}

// Labels returns value -> label for the filter engine.
func (s *CatalogService) Labels(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return c.Labels(), nil
}

// AddExpenseType adds a user-defined type. An empty value is derived from the
// label; values lacking the custom prefix get it.
func (s *CatalogService) AddExpenseType(ctx context.Context, t domain.ExpenseType) (*domain.ExpenseType, error) {
	ctx, span := tracer.Start(ctx, "CatalogService.AddExpenseType")
	defer span.End()

	t.Label = strings.TrimSpace(t.Label)
	t.Value = strings.TrimSpace(t.Value)
	if t.Label == "" {
		return nil, &domain.ErrValidation{Field: "label", Message: msgTypeLabelRequired}
	}
	if t.Value == taxonomy.Sentinel {
		return nil, &domain.ErrValidation{Field: "value", Message: msgTypeReserved}
	}
	if t.Value == "" {
		t.Value = taxonomy.CustomValue(t.Label)
	} else {
		t.Value = taxonomy.CustomValue(t.Value)
	}
	if t.Value == taxonomy.CustomPrefix {
		return nil, &domain.ErrValidation{Field: "value", Message: msgTypeLabelRequired}
	}
	span.SetAttributes(attribute.String("expense_type", t.Value))

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if !c.Add(t) {
		return nil, &domain.ErrConflict{Message: msgTypeExists}
	}
	if err := s.store.Save(ctx, c.Custom()); err != nil {
		return nil, fmt.Errorf("saving expense types: %w", err)
	}

	s.logger.Info("expense type added", zap.String("value", t.Value))
	return &t, nil
}
