package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/export"
	"github.com/melking/melking-bfa-go/internal/infra/cache"
	"github.com/melking/melking-bfa-go/internal/infra/observability"
	"github.com/melking/melking-bfa-go/internal/service"

	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 20, 12, 0, 0, 0, calendar.Tehran)

func newFinanceService(t *testing.T, b *mockBackend) *service.FinanceService {
	t.Helper()
	metrics := observability.NewMetrics()
	ledgers := cache.New[[]domain.Transaction](5 * time.Minute)
	t.Cleanup(ledgers.Close)
	exporter := export.NewExporter(b, 2, calendar.Tehran, metrics, zap.NewNop())
	svc := service.NewFinanceService(
		b,
		ledgers,
		service.NewCatalogService(&memoryCatalogStore{}, zap.NewNop()),
		exporter,
		calendar.Tehran,
		1024,
		metrics,
		zap.NewNop(),
	)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

func callerCtx(userID string) context.Context {
	return domain.WithCaller(context.Background(), domain.Caller{UserID: userID, Role: "resident", Token: "tok"})
}

func sampleLedger() []domain.Transaction {
	return []domain.Transaction{
		{ID: "1", Title: "قبض آب", BillType: "water", Amount: domain.Float(100000), Date: "2024-03-01", Status: "pending"},
		{ID: "2", Title: "شارژ ماهانه", Amount: domain.Float(500000), Date: "2024-03-10", Status: "unpaid"},
		{ID: "3", Title: "تعمیر آسانسور", Category: "repair", TotalAmount: domain.Float(250000), CreatedAt: "2024-03-05"},
	}
}

func TestListTransactions_SortedAndTotalled(t *testing.T) {
	b := &mockBackend{transactions: sampleLedger()}
	svc := newFinanceService(t, b)

	ledger, err := svc.ListTransactions(callerCtx("u1"), service.LedgerQuery{BuildingID: "b1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ledger.Count != 3 {
		t.Fatalf("expected 3 rows, got %d", ledger.Count)
	}
	want := []string{"2", "3", "1"}
	for i, id := range want {
		if got := ledger.Transactions[i].ID.String(); got != id {
			t.Errorf("row %d: expected id %s, got %s", i, id, got)
		}
	}
	if ledger.TotalCost != 850000 {
		t.Errorf("expected total 850000, got %f", ledger.TotalCost)
	}
	if ledger.Transactions[2].DisplayStatus == "" || ledger.Transactions[2].JalaliDate == "" {
		t.Error("expected display status and jalali date to be filled")
	}
	if ledger.Transactions[1].DisplayAmount != 250000 {
		t.Errorf("expected canonical amount from total_amount, got %f", ledger.Transactions[1].DisplayAmount)
	}
}

func TestListTransactions_ChargeView(t *testing.T) {
	b := &mockBackend{transactions: sampleLedger()}
	svc := newFinanceService(t, b)

	ledger, err := svc.ListTransactions(callerCtx("u1"), service.LedgerQuery{
		BuildingID: "b1",
		Filter:     domain.FilterSpec{ViewMode: domain.ViewCharge},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ledger.Count != 1 || ledger.Transactions[0].ID != "2" {
		t.Fatalf("expected only the charge row, got %+v", ledger.Transactions)
	}
	if ledger.TotalCost != 500000 {
		t.Errorf("expected total 500000, got %f", ledger.TotalCost)
	}
}

func TestListTransactions_KeepsSessionCopy(t *testing.T) {
	b := &mockBackend{transactions: sampleLedger()}
	svc := newFinanceService(t, b)
	ctx := callerCtx("u1")

	if _, ok := svc.SessionLedger(ctx, "b1"); ok {
		t.Fatal("expected no session ledger before the first fetch")
	}
	if _, err := svc.ListTransactions(ctx, service.LedgerQuery{BuildingID: "b1", Filter: domain.FilterSpec{Category: "repair"}}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	txs, ok := svc.SessionLedger(ctx, "b1")
	if !ok || len(txs) != 3 {
		t.Fatalf("expected the unfiltered ledger in session, got %d rows", len(txs))
	}
	if _, ok := svc.SessionLedger(callerCtx("u2"), "b1"); ok {
		t.Error("expected session ledgers to be per caller")
	}
}

func TestListTransactions_BackendError(t *testing.T) {
	backendErr := &domain.ErrExternalService{Service: "billing", StatusCode: 500, Err: errors.New("boom")}
	svc := newFinanceService(t, &mockBackend{txErr: backendErr})

	_, err := svc.ListTransactions(callerCtx("u1"), service.LedgerQuery{BuildingID: "b1"})
	if !domain.IsStatus(err, 500) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
}

func TestListTransactions_RequiresBuilding(t *testing.T) {
	svc := newFinanceService(t, &mockBackend{})

	_, err := svc.ListTransactions(callerCtx("u1"), service.LedgerQuery{})
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportTransactions_MatchesFilteredView(t *testing.T) {
	b := &mockBackend{transactions: sampleLedger()}
	svc := newFinanceService(t, b)

	f, err := svc.ExportTransactions(callerCtx("u1"), service.LedgerQuery{
		BuildingID: "b1",
		Filter:     domain.FilterSpec{Category: "repair"},
	}, &domain.Building{Title: "برج"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if f.Rows != 1 {
		t.Errorf("expected 1 exported row, got %d", f.Rows)
	}
	if !strings.HasSuffix(f.Name, ".xlsx") {
		t.Errorf("expected xlsx filename, got %s", f.Name)
	}
}

func TestExportTransactions_NothingToExport(t *testing.T) {
	svc := newFinanceService(t, &mockBackend{transactions: sampleLedger()})

	_, err := svc.ExportTransactions(callerCtx("u1"), service.LedgerQuery{
		BuildingID: "b1",
		Filter:     domain.FilterSpec{SearchTerm: "no such row"},
	}, nil)
	var nte *domain.ErrNothingToExport
	if !errors.As(err, &nte) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestPayBill_MarksSessionRowPaid(t *testing.T) {
	b := &mockBackend{transactions: sampleLedger()}
	svc := newFinanceService(t, b)
	ctx := callerCtx("u1")

	if _, err := svc.ListTransactions(ctx, service.LedgerQuery{BuildingID: "b1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp, err := svc.PayBill(ctx, &domain.PayBillRequest{BuildingID: "b1", BillID: "1", Amount: domain.Float(100000)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resp.Success {
		t.Error("expected success")
	}
	if len(b.paid) != 1 || b.paid[0].IdempotencyKey == "" {
		t.Fatal("expected one payment carrying an idempotency key")
	}

	txs, _ := svc.SessionLedger(ctx, "b1")
	for _, tx := range txs {
		if tx.ID == "1" && tx.Status != "paid" {
			t.Errorf("expected bill 1 to be paid, got %q", tx.Status)
		}
		if tx.ID == "2" && tx.Status != "unpaid" {
			t.Errorf("expected bill 2 untouched, got %q", tx.Status)
		}
	}
}

func TestPayBill_Validation(t *testing.T) {
	b := &mockBackend{}
	svc := newFinanceService(t, b)

	cases := []*domain.PayBillRequest{
		{BillID: "1"},
		{BuildingID: "b1"},
		{BuildingID: "b1", BillID: "1", Amount: domain.Float(-5)},
	}
	for _, req := range cases {
		_, err := svc.PayBill(callerCtx("u1"), req)
		var ve *domain.ErrValidation
		if !errors.As(err, &ve) {
			t.Errorf("expected validation error for %+v, got %v", req, err)
		}
	}
	if len(b.paid) != 0 {
		t.Error("expected no backend call on invalid input")
	}
}

func TestPayBill_BackendErrorLeavesSessionUntouched(t *testing.T) {
	b := &mockBackend{transactions: sampleLedger()}
	svc := newFinanceService(t, b)
	ctx := callerCtx("u1")
	_, _ = svc.ListTransactions(ctx, service.LedgerQuery{BuildingID: "b1"})

	b.payErr = &domain.ErrExternalService{Service: "billing", StatusCode: 400, Detail: "قبض پرداخت شده است"}
	if _, err := svc.PayBill(ctx, &domain.PayBillRequest{BuildingID: "b1", BillID: "1"}); err == nil {
		t.Fatal("expected error")
	}
	txs, _ := svc.SessionLedger(ctx, "b1")
	for _, tx := range txs {
		if tx.Status == "paid" {
			t.Errorf("expected no row marked paid, got %s", tx.ID)
		}
	}
}

func validExpense() *domain.ExpenseRequest {
	return &domain.ExpenseRequest{
		BuildingID:         "b1",
		ExpenseType:        "water_bill",
		ExpenseName:        "قبض آب فروردین",
		TotalAmount:        "۱٬۲۰۰٬۰۰۰",
		Target:             "all",
		DistributionMethod: "equal",
		Role:               "owner",
		BillDue:            "2024-04-01",
	}
}

func TestRegisterExpense_NormalisesRequest(t *testing.T) {
	b := &mockBackend{}
	svc := newFinanceService(t, b)

	req := validExpense()
	req.SpecificUnits = []string{"3"}
	resp, err := svc.RegisterExpense(callerCtx("u1"), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.SharedBillID != "sb-1" {
		t.Errorf("expected shared bill id, got %s", resp.SharedBillID)
	}
	if len(b.registered) != 1 {
		t.Fatalf("expected one registration, got %d", len(b.registered))
	}
	got := b.registered[0]
	if got.TotalAmount != "1200000" {
		t.Errorf("expected normalised amount 1200000, got %s", got.TotalAmount)
	}
	if got.UnitSelection != "all_units" {
		t.Errorf("expected all_units, got %s", got.UnitSelection)
	}
	if got.PaymentMethod != "direct" {
		t.Errorf("expected default payment method direct, got %s", got.PaymentMethod)
	}
	if got.SpecificUnits != nil {
		t.Error("expected specific units dropped for a non-custom target")
	}
}

func TestRegisterExpense_JalaliDueDate(t *testing.T) {
	b := &mockBackend{}
	svc := newFinanceService(t, b)

	req := validExpense()
	req.BillDue = "۱۴۰۳/۰۱/۲۰"
	if _, err := svc.RegisterExpense(callerCtx("u1"), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRegisterExpense_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ExpenseRequest)
		field  string
		msg    string
	}{
		{"missing expense type", func(r *domain.ExpenseRequest) { r.ExpenseType = "" }, "expense_type", "این فیلد نمی‌تواند خالی باشد."},
		{"sentinel expense type", func(r *domain.ExpenseRequest) { r.ExpenseType = "AddExpenseType" }, "expense_type", "این فیلد نمی‌تواند خالی باشد."},
		{"missing name", func(r *domain.ExpenseRequest) { r.ExpenseName = "  " }, "expense_name", "نام هزینه الزامی است."},
		{"zero amount", func(r *domain.ExpenseRequest) { r.TotalAmount = "0" }, "total_amount", "لطفاً مبلغ معتبر وارد کنید."},
		{"unparseable amount", func(r *domain.ExpenseRequest) { r.TotalAmount = "abc" }, "total_amount", "لطفاً مبلغ معتبر وارد کنید."},
		{"missing due date", func(r *domain.ExpenseRequest) { r.BillDue = "" }, "bill_due", "تاریخ مهلت پرداخت الزامی است."},
		{"due date too soon", func(r *domain.ExpenseRequest) { r.BillDue = "2024-03-25" }, "bill_due", "تاریخ مهلت پرداخت باید حداقل 7 روز از امروز باشد."},
		{"custom target without units", func(r *domain.ExpenseRequest) { r.Target = "custom" }, "specific_units", "حداقل یک واحد باید انتخاب شود."},
		{"custom costs missing", func(r *domain.ExpenseRequest) { r.DistributionMethod = "custom" }, "custom_unit_costs", ""},
		{"custom costs off total", func(r *domain.ExpenseRequest) {
			r.DistributionMethod = "custom"
			r.CustomUnitCosts = map[string]float64{"1": 600000, "2": 500000}
		}, "custom_unit_costs", ""},
		{"attachment too large", func(r *domain.ExpenseRequest) {
			r.Attachment = &domain.Attachment{Filename: "r.pdf", Content: make([]byte, 2048)}
		}, "attachment", ""},
		{"attachment extension", func(r *domain.ExpenseRequest) {
			r.Attachment = &domain.Attachment{Filename: "r.exe", Content: []byte("x")}
		}, "attachment", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{}
			svc := newFinanceService(t, b)

			req := validExpense()
			tt.mutate(req)
			_, err := svc.RegisterExpense(callerCtx("u1"), req)

			var ve *domain.ErrValidation
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ve.Field)
			}
			if tt.msg != "" && ve.Message != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, ve.Message)
			}
			if len(b.registered) != 0 {
				t.Error("expected no backend call")
			}
		})
	}
}

func TestRegisterExpense_CustomCostsWithinOneToman(t *testing.T) {
	b := &mockBackend{}
	svc := newFinanceService(t, b)

	req := validExpense()
	req.Target = "custom"
	req.SpecificUnits = []string{"1", "2"}
	req.DistributionMethod = "custom"
	req.CustomUnitCosts = map[string]float64{"1": 600000.5, "2": 600000}
	if _, err := svc.RegisterExpense(callerCtx("u1"), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := b.registered[0].UnitSelection; got != "specific_units" {
		t.Errorf("expected specific_units, got %s", got)
	}
}

func TestRegisterExpense_InvalidatesSessionLedger(t *testing.T) {
	b := &mockBackend{transactions: sampleLedger()}
	svc := newFinanceService(t, b)
	ctx := callerCtx("u1")

	other := callerCtx("u2")

	_, _ = svc.ListTransactions(ctx, service.LedgerQuery{BuildingID: "b1"})
	_, _ = svc.ListTransactions(other, service.LedgerQuery{BuildingID: "b1"})
	_, _ = svc.ListTransactions(other, service.LedgerQuery{BuildingID: "b10"})
	if _, err := svc.RegisterExpense(ctx, validExpense()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := svc.SessionLedger(ctx, "b1"); ok {
		t.Error("expected session ledger dropped after registration")
	}
	if _, ok := svc.SessionLedger(other, "b1"); ok {
		t.Error("expected other residents' copies of the building dropped too")
	}
	if _, ok := svc.SessionLedger(other, "b10"); !ok {
		t.Error("expected an unrelated building to keep its session copy")
	}
}

func TestUpdateExpense(t *testing.T) {
	b := &mockBackend{}
	svc := newFinanceService(t, b)

	if _, err := svc.UpdateExpense(callerCtx("u1"), validExpense()); err == nil {
		t.Fatal("expected error without shared bill id")
	}

	req := validExpense()
	req.SharedBillID = "sb-9"
	req.BillDue = "2024-03-21"
	if _, err := svc.UpdateExpense(callerCtx("u1"), req); err != nil {
		t.Fatalf("expected an existing expense to keep a near due date, got %v", err)
	}
	if len(b.updated) != 1 || b.updated[0].SharedBillID != "sb-9" {
		t.Errorf("expected update of sb-9, got %+v", b.updated)
	}
}

func TestDeleteExpense(t *testing.T) {
	b := &mockBackend{}
	svc := newFinanceService(t, b)

	if _, err := svc.DeleteExpense(callerCtx("u1"), "b1", ""); err == nil {
		t.Fatal("expected error without shared bill id")
	}
	if _, err := svc.DeleteExpense(callerCtx("u1"), "b1", "sb-3"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(b.deleted) != 1 || b.deleted[0] != "sb-3" {
		t.Errorf("expected delete of sb-3, got %v", b.deleted)
	}
}
