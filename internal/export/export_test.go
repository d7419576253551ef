package export_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/export"
	"github.com/melking/melking-bfa-go/internal/infra/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeAllocations struct {
	mu       sync.Mutex
	byID     map[string]*domain.Allocation
	fail     map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    []string
}

func (f *fakeAllocations) GetExpenseAllocation(_ context.Context, id string) (*domain.Allocation, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if f.fail[id] {
		return nil, errors.New("boom")
	}
	return f.byID[id], nil
}

func newExporter(t *testing.T, f *fakeAllocations, concurrency int) *export.Exporter {
	t.Helper()
	e := export.NewExporter(f, concurrency, calendar.Tehran, observability.NewMetrics(), zap.NewNop())
	e.SetClock(func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, calendar.Tehran) })
	return e
}

func readSheet(t *testing.T, content []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func sharedBill(id, title string) domain.Transaction {
	return domain.Transaction{ID: domain.FlexString(id), Title: title, Type: "shared_bill", Amount: domain.Float(1000)}
}

func TestTransactions_RowCountSurvivesFailedFetches(t *testing.T) {
	alloc := &domain.Allocation{UnitAllocations: []domain.UnitAllocation{
		{UnitNumber: "3", Amount: domain.Float(500000), Percentage: domain.Float(50)},
		{UnitID: "9", Amount: domain.Float(500000), Percentage: domain.Float(50)},
	}}
	fake := &fakeAllocations{
		byID: map[string]*domain.Allocation{"1": alloc, "3": alloc},
		fail: map[string]bool{"2": true, "4": true},
	}
	rows := []domain.Transaction{
		sharedBill("1", "قبض آب"),
		sharedBill("2", "قبض برق"),
		{ID: "x", Title: "فاکتور", Category: "individual_invoice"},
		sharedBill("3", "نظافت"),
		sharedBill("4", "تعمیرات"),
	}

	file, err := newExporter(t, fake, 2).Transactions(context.Background(), rows, &domain.Building{Title: "برج آفتاب"})
	require.NoError(t, err)
	assert.Equal(t, len(rows), file.Rows)
	assert.NotEmpty(t, file.ID)

	sheet := readSheet(t, file.Content, "گردش مالی")
	require.Len(t, sheet, len(rows)+1)
	assert.Equal(t, "ردیف", sheet[0][0])
	assert.Equal(t, "سهم هر واحد", sheet[0][12])

	for i, tx := range rows {
		assert.Equal(t, tx.Title, sheet[i+1][1], "row %d out of order", i)
	}
	assert.Equal(t, "واحد 3، واحد 9", sheet[1][11])
	assert.Equal(t, "—", sheet[2][11])
	assert.Equal(t, "—", sheet[2][12])
	assert.Equal(t, "—", sheet[3][11], "non-shared rows have no allocation")

	assert.Len(t, fake.calls, 4, "only shared bills are fetched")
	assert.LessOrEqual(t, fake.peak.Load(), int32(2))
}

func TestTransactions_Filename(t *testing.T) {
	file, err := newExporter(t, &fakeAllocations{}, 1).Transactions(context.Background(),
		[]domain.Transaction{{Title: "x"}}, &domain.Building{Title: "برج  آفتاب (A-1)!"})
	require.NoError(t, err)
	assert.Equal(t, "گردش_مالی_برج_آفتاب_A1_1403_01_01.xlsx", file.Name)
}

func TestTransactions_DefaultBuildingName(t *testing.T) {
	file, err := newExporter(t, &fakeAllocations{}, 1).Transactions(context.Background(), []domain.Transaction{{Title: "x"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "گردش_مالی_ساختمان_1403_01_01.xlsx", file.Name)
}

func TestTransactions_Empty(t *testing.T) {
	_, err := newExporter(t, &fakeAllocations{}, 1).Transactions(context.Background(), nil, nil)
	var nothing *domain.ErrNothingToExport
	assert.ErrorAs(t, err, &nothing)
}

func TestTransactions_CanonicalCells(t *testing.T) {
	rows := []domain.Transaction{{
		Description:        "شارژ ماهانه",
		TotalAmount:        domain.Float(250000),
		BillingDate:        "2024-03-20",
		Status:             "paid",
		PaymentMethod:      "from_fund",
		DistributionMethod: "equal",
		BillDue:            "not-a-date",
	}}

	file, err := newExporter(t, &fakeAllocations{}, 1).Transactions(context.Background(), rows, nil)
	require.NoError(t, err)

	row := readSheet(t, file.Content, "گردش مالی")[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "شارژ ماهانه", row[1])
	assert.Equal(t, "—", row[2])
	assert.Equal(t, "250000", row[4])
	assert.Equal(t, "1403/01/01", row[5])
	assert.Equal(t, "برداشت از موجودی صندوق", row[6])
	assert.Equal(t, "برداشت از موجودی صندوق", row[8])
	assert.Equal(t, "not-a-date", row[10])
}

func TestAllocationColumns(t *testing.T) {
	units, shares := export.AllocationColumns(&domain.Allocation{UnitAllocations: []domain.UnitAllocation{
		{UnitNumber: "12", Amount: domain.Float(1500000), Percentage: domain.Float(33.333)},
		{UnitID: "7"},
	}})
	assert.Equal(t, "واحد 12، واحد 7", units)
	assert.Equal(t, "واحد 12: "+calendar.FormatToman(1500000)+" تومان (33.33%)؛ واحد 7: 0 تومان (0%)", shares)

	units, shares = export.AllocationColumns(nil)
	assert.Equal(t, "—", units)
	assert.Equal(t, "—", shares)
}

func TestUnitsDebtCredit(t *testing.T) {
	units := []domain.BuildingUnit{
		{UnitNumber: "12", FullName: "علی", Role: "owner", TotalDebt: domain.Float(500000)},
		{UnitsID: "4", OwnerName: "سارا", TenantFullName: "رضا", TotalCredit: domain.Float(200), Balance: domain.Float(150)},
		{},
	}

	file, err := newExporter(t, &fakeAllocations{}, 1).UnitsDebtCredit(context.Background(), units, &domain.Building{Name: "مهر"})
	require.NoError(t, err)
	assert.Equal(t, "بدهکاری_بستانکاری_واحدها_مهر_1403_01_01.xlsx", file.Name)

	sheet := readSheet(t, file.Content, "بدهکاری و بستانکاری واحدها")
	require.Len(t, sheet, 4)
	assert.Equal(t, []string{"1", "12", "علی", "مالک", "500000", "0", "-500000"}, sheet[1])
	assert.Equal(t, []string{"2", "4", "سارا", "مالک و ساکن", "0", "200", "150"}, sheet[2])
	assert.Equal(t, []string{"3", "—", "—", "خالی", "0", "0", "0"}, sheet[3])
}

func TestUnitsDebtCredit_Empty(t *testing.T) {
	_, err := newExporter(t, &fakeAllocations{}, 1).UnitsDebtCredit(context.Background(), nil, nil)
	var nothing *domain.ErrNothingToExport
	assert.ErrorAs(t, err, &nothing)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "برج_میلاد", export.SanitizeName("برج میلاد"))
	assert.Equal(t, "Tower_7", export.SanitizeName("Tower #7"))
	assert.Equal(t, "", export.SanitizeName("!!"))
}
