package service

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/export"
	"github.com/melking/melking-bfa-go/internal/finance"
	"github.com/melking/melking-bfa-go/internal/infra/observability"
	"github.com/melking/melking-bfa-go/internal/port"
	"github.com/melking/melking-bfa-go/internal/taxonomy"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// Validation messages shown to the user.
const (
	msgRequired         = "این فیلد نمی‌تواند خالی باشد."
	msgExpenseName      = "نام هزینه الزامی است."
	msgAmountInvalid    = "لطفاً مبلغ معتبر وارد کنید."
	msgBillDueRequired  = "تاریخ مهلت پرداخت الزامی است."
	msgBillDueInvalid   = "تاریخ مهلت پرداخت نامعتبر است."
	msgBillDueTooSoon   = "تاریخ مهلت پرداخت باید حداقل 7 روز از امروز باشد."
	msgSelectUnits      = "حداقل یک واحد باید انتخاب شود."
	msgCustomCosts      = "لطفاً مبلغ را برای همه واحدها وارد کنید."
	msgCustomCostsSum   = "مجموع مبالغ واحدها باید برابر مبلغ کل باشد."
	msgAttachmentSize   = "حجم فایل نباید بیشتر از 10 مگابایت باشد."
	msgAttachmentFormat = "فرمت فایل مجاز نیست. فرمت‌های مجاز: jpg, jpeg, png, pdf, doc, docx, txt"
	msgBuildingMissing  = "ساختمان انتخاب نشده است"
	msgBillMissing      = "شناسه قبض مشخص نشده است"
	msgExpenseMissing   = "شناسه هزینه مشخص نشده است"
)

// minBillDueDays is how far ahead a new expense's due date must be.
const minBillDueDays = 7

var allowedAttachments = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".pdf": true,
	".doc": true, ".docx": true, ".txt": true,
}

// LedgerRow is a transaction decorated with the display values the client
// shows, computed with the same rules as the workbook export.
type LedgerRow struct {
	domain.Transaction
	DisplayTitle  string  `json:"display_title"`
	DisplayAmount float64 `json:"display_amount"`
	DisplayStatus string  `json:"display_status"`
	StatusColor   string  `json:"status_color"`
	StatusBgColor string  `json:"status_bg_color"`
	JalaliDate    string  `json:"jalali_date"`
	PaymentLabel  string  `json:"payment_method_label"`
}

// Ledger is the filtered view returned to the client.
type Ledger struct {
	Transactions []LedgerRow `json:"transactions"`
	TotalCost    float64     `json:"total_cost"`
	Count        int         `json:"count"`
}

// LedgerQuery selects a building's ledger and filters it.
type LedgerQuery struct {
	BuildingID string
	Filter     domain.FilterSpec
}

// FinanceService serves the building ledger: filtering, export, bill payment
// and expense registration.
type FinanceService struct {
	backend        port.BillingBackend
	ledgers        port.Cache[[]domain.Transaction]
	catalog        *CatalogService
	engine         *finance.Engine
	exporter       *export.Exporter
	loc            *time.Location
	maxAttachment  int64
	metrics        *observability.Metrics
	logger         *zap.Logger
	now            func() time.Time
	newIdempotency func() string
}

// NewFinanceService creates the finance service with all dependencies injected.
func NewFinanceService(
	backend port.BillingBackend,
	ledgers port.Cache[[]domain.Transaction],
	catalog *CatalogService,
	exporter *export.Exporter,
	loc *time.Location,
	maxAttachment int64,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *FinanceService {
	if loc == nil {
		loc = calendar.Tehran
	}
	return &FinanceService{
		backend:        backend,
		ledgers:        ledgers,
		catalog:        catalog,
		engine:         finance.NewEngine(loc),
		exporter:       exporter,
		loc:            loc,
		maxAttachment:  maxAttachment,
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
		newIdempotency: uuid.NewString,
	}
}

// SetClock replaces the clock used for due-date validation.
func (s *FinanceService) SetClock(now func() time.Time) {
	s.now = now
}

func ledgerKey(ctx context.Context, buildingID string) string {
	caller, _ := domain.CallerFromContext(ctx)
	return buildingID + ":" + caller.UserID
}

// invalidate drops every session copy of a building's ledger. Expense
// mutations change the rows all residents see.
func (s *FinanceService) invalidate(buildingID string) {
	if buildingID == "" {
		return
	}
	n := s.ledgers.DeletePrefix(buildingID + ":")
	s.logger.Debug("session ledgers invalidated", zap.String("building_id", buildingID), zap.Int("sessions", n))
}

// filtered fetches the ledger fresh, keeps the session copy and applies q.
func (s *FinanceService) filtered(ctx context.Context, q LedgerQuery) (finance.Result, error) {
	if q.BuildingID == "" {
		return finance.Result{}, &domain.ErrValidation{Field: "building_id", Message: msgBuildingMissing}
	}

	txs, err := s.backend.ListTransactions(ctx, q.BuildingID, time.Time{}, time.Time{})
	if err != nil {
		s.metrics.IncrExternalError("billing")
		s.logger.Error("failed to fetch transactions",
			zap.String("building_id", q.BuildingID),
			zap.Error(err),
		)
		return finance.Result{}, fmt.Errorf("transactions fetch: %w", err)
	}
	s.ledgers.Set(ledgerKey(ctx, q.BuildingID), txs)

	if q.Filter.ViewMode == domain.ViewCharge {
		charges := make([]domain.Transaction, 0, len(txs))
		for i := range txs {
			if finance.IsChargeEntry(&txs[i]) {
				charges = append(charges, txs[i])
			}
		}
		txs = charges
	}

	labels, err := s.catalog.Labels(ctx)
	if err != nil {
		return finance.Result{}, err
	}
	return s.engine.Filter(txs, q.Filter, labels), nil
}

// ListTransactions returns the filtered, newest-first ledger and its total.
func (s *FinanceService) ListTransactions(ctx context.Context, q LedgerQuery) (*Ledger, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", q.BuildingID), attribute.String("view", string(q.Filter.ViewMode)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("transactions", time.Since(start))
	}()

	res, err := s.filtered(ctx, q)
	if err != nil {
		return nil, err
	}

	rows := make([]LedgerRow, len(res.Transactions))
	for i := range res.Transactions {
		rows[i] = s.decorate(&res.Transactions[i])
	}
	return &Ledger{Transactions: rows, TotalCost: res.TotalCost, Count: len(rows)}, nil
}

func (s *FinanceService) decorate(tx *domain.Transaction) LedgerRow {
	raw, _ := finance.StatusChain.First(tx)
	return LedgerRow{
		Transaction:   *tx,
		DisplayTitle:  finance.DisplayTitle(tx),
		DisplayAmount: finance.CanonicalAmount(tx),
		DisplayStatus: finance.CanonicalStatus(tx),
		StatusColor:   taxonomy.StatusColor(raw),
		StatusBgColor: taxonomy.StatusBgColor(raw),
		JalaliDate:    calendar.FormatJalali(finance.CanonicalDate(tx), s.loc),
		PaymentLabel:  taxonomy.PaymentMethodLabel(tx.PaymentMethod),
	}
}

// ExportTransactions exports exactly the rows ListTransactions would return for q.
func (s *FinanceService) ExportTransactions(ctx context.Context, q LedgerQuery, building *domain.Building) (*export.File, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.ExportTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("building.id", q.BuildingID))

	res, err := s.filtered(ctx, q)
	if err != nil {
		return nil, err
	}
	if building == nil {
		building = &domain.Building{ID: domain.FlexString(q.BuildingID)}
	}
	return s.exporter.Transactions(ctx, res.Transactions, building)
}

// PayBill pays a bill and marks the matching row of the caller's session
// ledger as paid.
func (s *FinanceService) PayBill(ctx context.Context, req *domain.PayBillRequest) (*domain.PayBillResponse, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.PayBill")
	defer span.End()

	if req.BuildingID == "" {
		return nil, &domain.ErrValidation{Field: "building_id", Message: msgBuildingMissing}
	}
	if req.BillID == "" {
		return nil, &domain.ErrValidation{Field: "bill_id", Message: msgBillMissing}
	}
	if req.Amount.Valid && req.Amount.Value <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: msgAmountInvalid}
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = s.newIdempotency()
	}
	span.SetAttributes(attribute.String("bill.id", req.BillID.String()))

	resp, err := s.backend.PayBill(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("billing")
		s.logger.Error("pay bill failed",
			zap.String("building_id", req.BuildingID),
			zap.String("bill_id", req.BillID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("pay bill: %w", err)
	}

	s.ledgers.Update(ledgerKey(ctx, req.BuildingID), func(txs []domain.Transaction) []domain.Transaction {
		out := make([]domain.Transaction, len(txs))
		copy(out, txs)
		for i := range out {
			if out[i].ID == req.BillID {
				out[i].Status = "paid"
				out[i].StatusLabel = ""
			}
		}
		return out
	})

	s.logger.Info("bill paid",
		zap.String("building_id", req.BuildingID),
		zap.String("bill_id", req.BillID.String()),
	)
	return resp, nil
}

// SessionLedger returns the caller's last fetched ledger for a building.
func (s *FinanceService) SessionLedger(ctx context.Context, buildingID string) ([]domain.Transaction, bool) {
	txs, ok := s.ledgers.Get(ledgerKey(ctx, buildingID))
	if ok {
		s.metrics.IncrCacheHit(observability.CacheLedger)
	} else {
		s.metrics.IncrCacheMiss(observability.CacheLedger)
	}
	return txs, ok
}

// RegisterExpense validates and registers a shared expense.
func (s *FinanceService) RegisterExpense(ctx context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.RegisterExpense")
	defer span.End()

	if err := s.prepareExpense(req, true); err != nil {
		return nil, err
	}
	resp, err := s.backend.RegisterExpense(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("billing")
		return nil, fmt.Errorf("register expense: %w", err)
	}
	s.invalidate(req.BuildingID)
	s.logger.Info("expense registered",
		zap.String("building_id", req.BuildingID),
		zap.String("expense_type", req.ExpenseType),
		zap.String("shared_bill_id", resp.SharedBillID.String()),
	)
	return resp, nil
}

// UpdateExpense validates and updates an existing shared expense.
func (s *FinanceService) UpdateExpense(ctx context.Context, req *domain.ExpenseRequest) (*domain.ExpenseResponse, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.UpdateExpense")
	defer span.End()

	if req.SharedBillID == "" {
		return nil, &domain.ErrValidation{Field: "shared_bill_id", Message: msgExpenseMissing}
	}
	if err := s.prepareExpense(req, false); err != nil {
		return nil, err
	}
	resp, err := s.backend.UpdateExpense(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("billing")
		return nil, fmt.Errorf("update expense: %w", err)
	}
	s.invalidate(req.BuildingID)
	return resp, nil
}

// DeleteExpense removes a shared expense.
func (s *FinanceService) DeleteExpense(ctx context.Context, buildingID, sharedBillID string) (*domain.ExpenseResponse, error) {
	ctx, span := tracer.Start(ctx, "FinanceService.DeleteExpense")
	defer span.End()

	if sharedBillID == "" {
		return nil, &domain.ErrValidation{Field: "shared_bill_id", Message: msgExpenseMissing}
	}
	resp, err := s.backend.DeleteExpense(ctx, sharedBillID)
	if err != nil {
		s.metrics.IncrExternalError("billing")
		return nil, fmt.Errorf("delete expense: %w", err)
	}
	s.invalidate(buildingID)
	return resp, nil
}

// prepareExpense validates req before any backend call and normalises it
// into the backend's form. The due-date lead time applies to new expenses only.
func (s *FinanceService) prepareExpense(req *domain.ExpenseRequest, isNew bool) error {
	if req.BuildingID == "" {
		return &domain.ErrValidation{Field: "building_id", Message: msgBuildingMissing}
	}
	if req.ExpenseType == "" || req.ExpenseType == taxonomy.Sentinel {
		return &domain.ErrValidation{Field: "expense_type", Message: msgRequired}
	}
	if strings.TrimSpace(req.ExpenseName) == "" {
		return &domain.ErrValidation{Field: "expense_name", Message: msgExpenseName}
	}
	if req.Target == "" {
		return &domain.ErrValidation{Field: "target", Message: msgRequired}
	}

	if strings.TrimSpace(req.TotalAmount) == "" {
		return &domain.ErrValidation{Field: "total_amount", Message: msgRequired}
	}
	amount, ok := calendar.ParseAmount(req.TotalAmount)
	if !ok || amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return &domain.ErrValidation{Field: "total_amount", Message: msgAmountInvalid}
	}

	if req.Role == "" {
		return &domain.ErrValidation{Field: "role", Message: msgRequired}
	}
	if req.DistributionMethod == "" {
		return &domain.ErrValidation{Field: "distribution_method", Message: msgRequired}
	}

	if err := s.validateBillDue(req.BillDue, isNew); err != nil {
		return err
	}

	if req.Target == "custom" && len(req.SpecificUnits) == 0 {
		return &domain.ErrValidation{Field: "specific_units", Message: msgSelectUnits}
	}
	if req.DistributionMethod == "custom" {
		if err := validateCustomCosts(req.CustomUnitCosts, amount); err != nil {
			return err
		}
	}
	if err := s.validateAttachment(req.Attachment); err != nil {
		return err
	}

	req.TotalAmount = strconv.FormatFloat(amount, 'f', -1, 64)
	req.UnitSelection = taxonomy.UnitSelection(req.Target)
	if req.Target != "custom" {
		req.SpecificUnits = nil
	}
	if req.DistributionMethod != "custom" {
		req.CustomUnitCosts = nil
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = taxonomy.PaymentDirect
	}
	return nil
}

func (s *FinanceService) validateBillDue(billDue string, isNew bool) error {
	if strings.TrimSpace(billDue) == "" {
		return &domain.ErrValidation{Field: "bill_due", Message: msgBillDueRequired}
	}
	due, ok := calendar.ParseDate(billDue, s.loc)
	if !ok {
		return &domain.ErrValidation{Field: "bill_due", Message: msgBillDueInvalid}
	}
	if !isNew {
		return nil
	}
	today := calendar.StartOfDay(s.now(), s.loc)
	days := calendar.StartOfDay(due, s.loc).Sub(today).Hours() / 24
	if days < minBillDueDays {
		return &domain.ErrValidation{Field: "bill_due", Message: msgBillDueTooSoon}
	}
	return nil
}

// validateCustomCosts requires a positive cost per unit summing to the total
// within one toman.
func validateCustomCosts(costs map[string]float64, total float64) error {
	if len(costs) == 0 {
		return &domain.ErrValidation{Field: "custom_unit_costs", Message: msgCustomCosts}
	}
	var sum float64
	for _, c := range costs {
		if c <= 0 {
			return &domain.ErrValidation{Field: "custom_unit_costs", Message: msgCustomCosts}
		}
		sum += c
	}
	if diff := sum - total; diff > 1 || diff < -1 {
		return &domain.ErrValidation{Field: "custom_unit_costs", Message: msgCustomCostsSum}
	}
	return nil
}

func (s *FinanceService) validateAttachment(a *domain.Attachment) error {
	if a == nil {
		return nil
	}
	if int64(len(a.Content)) > s.maxAttachment {
		return &domain.ErrValidation{Field: "attachment", Message: msgAttachmentSize}
	}
	if !allowedAttachments[strings.ToLower(filepath.Ext(a.Filename))] {
		return &domain.ErrValidation{Field: "attachment", Message: msgAttachmentFormat}
	}
	return nil
}
