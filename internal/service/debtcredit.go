package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/export"
	"github.com/melking/melking-bfa-go/internal/finance"
	"github.com/melking/melking-bfa-go/internal/infra/observability"
	"github.com/melking/melking-bfa-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// FallbackOwnUnit labels the own-unit fallback in the fallback counter.
const FallbackOwnUnit = "own_unit"

// DebtCreditService aggregates per-unit debt and credit for a building.
// Each building and caller pair is fetched at most once until Reset.
type DebtCreditService struct {
	backend  port.BillingBackend
	tracker  *finance.FetchTracker[*domain.DebtCreditResult]
	exporter *export.Exporter
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDebtCreditService creates the debt/credit service. Results are kept for
// ttl; a zero ttl keeps them until Reset.
func NewDebtCreditService(
	backend port.BillingBackend,
	exporter *export.Exporter,
	ttl time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DebtCreditService {
	return &DebtCreditService{
		backend:  backend,
		tracker:  finance.NewFetchTracker[*domain.DebtCreditResult](ttl),
		exporter: exporter,
		metrics:  metrics,
		logger:   logger,
	}
}

func trackerKey(buildingID string, caller domain.Caller) string {
	return buildingID + ":" + caller.UserID
}

// Aggregate returns the building's units with their debt/credit totals.
// When residents are denied the building-wide view, a resident sees only
// their own unit and the result is flagged ShowOnlyOwnUnit.
func (s *DebtCreditService) Aggregate(ctx context.Context, caller domain.Caller, buildingID string) (*domain.DebtCreditResult, error) {
	ctx, span := tracer.Start(ctx, "DebtCreditService.Aggregate")
	defer span.End()
	span.SetAttributes(
		attribute.String("building.id", buildingID),
		attribute.Bool("caller.manager", caller.IsManager()),
	)

	if buildingID == "" {
		return nil, &domain.ErrValidation{Field: "building_id", Message: msgBuildingMissing}
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("debt_credit", time.Since(start))
	}()

	res, fetched, err := s.tracker.Do(ctx, trackerKey(buildingID, caller), func(ctx context.Context) (*domain.DebtCreditResult, error) {
		return s.aggregate(ctx, caller, buildingID)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("fetched", fetched), attribute.Int("units", len(res.Units)))
	return res, nil
}

func (s *DebtCreditService) aggregate(ctx context.Context, caller domain.Caller, buildingID string) (*domain.DebtCreditResult, error) {
	res, err := s.backend.GetBuildingDebtCredit(ctx, buildingID)
	if err == nil {
		finance.Decorate(res.Units)
		res.Summary = finance.Summarize(res.Units)
		res.IsManager = res.IsManager || caller.IsManager()
		res.ShowOnlyOwnUnit = false
		return res, nil
	}

	if !domain.IsStatus(err, http.StatusForbidden) {
		s.metrics.IncrExternalError("billing")
		s.logger.Error("debt/credit fetch failed",
			zap.String("building_id", buildingID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("debt/credit summary: %w", err)
	}
	if caller.IsManager() {
		return nil, &domain.ErrForbidden{Action: "debt_credit_summary"}
	}
	return s.ownUnit(ctx, caller, buildingID)
}

// ownUnit narrows the view to the caller's first resolvable unit.
func (s *DebtCreditService) ownUnit(ctx context.Context, caller domain.Caller, buildingID string) (*domain.DebtCreditResult, error) {
	units, err := s.backend.ListBuildingUnits(ctx, buildingID)
	if err != nil {
		s.metrics.IncrExternalError("billing")
		return nil, fmt.Errorf("building units: %w", err)
	}
	own := finance.OwnUnits(units, caller)
	if len(own) == 0 {
		s.logger.Info("no own unit for resident",
			zap.String("building_id", buildingID),
			zap.String("user_id", caller.UserID),
		)
		return nil, &domain.ErrNoOwnUnit{BuildingID: buildingID}
	}

	listed := own[0]
	debt, err := s.backend.GetUnitDebt(ctx, listed.Key())
	if err != nil {
		s.metrics.IncrExternalError("billing")
		return nil, fmt.Errorf("unit debt: %w", err)
	}

	unit := finance.UnitFromDebt(*debt, listed)
	result := &domain.DebtCreditResult{
		Units:           []domain.BuildingUnit{unit},
		ShowOnlyOwnUnit: true,
	}
	finance.Decorate(result.Units)
	result.Summary = finance.Summarize(result.Units)

	s.metrics.IncrFallback(FallbackOwnUnit)
	s.logger.Info("debt/credit narrowed to own unit",
		zap.String("building_id", buildingID),
		zap.String("unit_id", unit.Key()),
	)
	return result, nil
}

// Reset drops the caller's aggregate so the next Aggregate fetches again.
// A fetch still in flight is not recorded.
func (s *DebtCreditService) Reset(caller domain.Caller, buildingID string) {
	s.tracker.Reset(trackerKey(buildingID, caller))
}

// ExportUnits writes the caller's debt/credit view to a workbook.
func (s *DebtCreditService) ExportUnits(ctx context.Context, caller domain.Caller, buildingID string, building *domain.Building) (*export.File, error) {
	ctx, span := tracer.Start(ctx, "DebtCreditService.ExportUnits")
	defer span.End()

	res, err := s.Aggregate(ctx, caller, buildingID)
	if err != nil {
		return nil, err
	}
	if building == nil {
		building = res.Building
	}
	if building == nil {
		building = &domain.Building{ID: domain.FlexString(buildingID)}
	}
	return s.exporter.UnitsDebtCredit(ctx, res.Units, building)
}

// Visibility returns whether residents may see the building-wide view.
func (s *DebtCreditService) Visibility(ctx context.Context, buildingID string) (*domain.VisibilitySettings, error) {
	ctx, span := tracer.Start(ctx, "DebtCreditService.Visibility")
	defer span.End()

	v, err := s.backend.GetVisibilitySettings(ctx, buildingID)
	if err != nil {
		s.metrics.IncrExternalError("billing")
		return nil, fmt.Errorf("visibility settings: %w", err)
	}
	return v, nil
}

// ToggleVisibility lets a manager show or hide the building-wide view from
// residents. Every cached aggregate of the building is dropped.
func (s *DebtCreditService) ToggleVisibility(ctx context.Context, caller domain.Caller, buildingID string, show bool) (*domain.VisibilitySettings, error) {
	ctx, span := tracer.Start(ctx, "DebtCreditService.ToggleVisibility")
	defer span.End()

	if !caller.IsManager() {
		return nil, &domain.ErrForbidden{Action: "toggle_debt_credit_visibility"}
	}
	if buildingID == "" {
		return nil, &domain.ErrValidation{Field: "building_id", Message: msgBuildingMissing}
	}

	v, err := s.backend.ToggleDebtCreditVisibility(ctx, buildingID, show)
	if err != nil {
		if domain.IsStatus(err, http.StatusForbidden) {
			return nil, &domain.ErrForbidden{Action: "toggle_debt_credit_visibility"}
		}
		s.metrics.IncrExternalError("billing")
		return nil, fmt.Errorf("toggle visibility: %w", err)
	}
	s.tracker.ResetPrefix(buildingID + ":")

	s.logger.Info("debt/credit visibility changed",
		zap.String("building_id", buildingID),
		zap.Bool("show_to_residents", show),
	)
	return v, nil
}
