package export

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/finance"
	"github.com/melking/melking-bfa-go/internal/taxonomy"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	transactionsSheet  = "گردش مالی"
	transactionsPrefix = "گردش_مالی"
	noValue            = "—"
)

var transactionHeaders = []string{
	"ردیف",
	"عنوان",
	"نام هزینه",
	"نوع هزینه",
	"مبلغ (تومان)",
	"تاریخ",
	"وضعیت سیستم",
	"نحوه تقسیم",
	"روش پرداخت",
	"توضیحات",
	"مهلت پرداخت",
	"واحدهای مشمول",
	"سهم هر واحد",
}

var transactionWidths = []float64{6, 28, 22, 18, 16, 12, 22, 18, 22, 36, 12, 30, 60}

// Result is the outcome of one row's allocation fetch. Rows that are not
// shared bills carry the zero Result.
type Result struct {
	Value *domain.Allocation
	Err   error
}

// FetchAllocations fetches the allocation of every shared-bill row
// concurrently and waits for all of them to settle. The returned slice is
// index-aligned with rows; a failed fetch only affects its own entry.
func (e *Exporter) FetchAllocations(ctx context.Context, rows []domain.Transaction) []Result {
	results := make([]Result, len(rows))

	var g errgroup.Group
	for i := range rows {
		if !finance.IsSharedBill(&rows[i]) {
			continue
		}
		id := rows[i].ID.String()
		g.Go(func() error {
			if err := e.bulkhead.Acquire(ctx); err != nil {
				results[i] = Result{Err: err}
				return nil
			}
			defer e.bulkhead.Release()

			alloc, err := e.allocations.GetExpenseAllocation(ctx, id)
			results[i] = Result{Value: alloc, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r.Err != nil {
			e.metrics.IncrAllocationFailure()
			e.logger.Warn("allocation fetch failed; exporting row without shares",
				zap.String("shared_bill_id", rows[i].ID.String()),
				zap.Error(r.Err),
			)
		}
	}
	return results
}

// Transactions exports rows, in order, one workbook row per transaction.
func (e *Exporter) Transactions(ctx context.Context, rows []domain.Transaction, building *domain.Building) (*File, error) {
	ctx, span := tracer.Start(ctx, "Exporter.Transactions")
	defer span.End()

	if len(rows) == 0 {
		return nil, &domain.ErrNothingToExport{Export: KindTransactions}
	}
	start := time.Now()

	allocations := e.FetchAllocations(ctx, rows)

	out := make([][]any, len(rows))
	for i := range rows {
		out[i] = e.transactionRow(i, &rows[i], allocations[i].Value)
	}

	content, err := render(sheet{name: transactionsSheet, headers: transactionHeaders, widths: transactionWidths, rows: out})
	if err != nil {
		e.logger.Error("export.xlsx.failed", zap.String("export", KindTransactions), zap.Error(err))
		return nil, err
	}
	return e.finish(KindTransactions, e.filename(transactionsPrefix, building), content, len(rows), start), nil
}

func (e *Exporter) transactionRow(i int, tx *domain.Transaction, alloc *domain.Allocation) []any {
	units, shares := AllocationColumns(alloc)

	distribution := noValue
	if tx.DistributionMethod != "" {
		distribution = taxonomy.PersianDistributionMethod(tx.DistributionMethod)
	}
	description := tx.Description
	if description == "" {
		description = noValue
	}

	return []any{
		i + 1,
		finance.DisplayTitle(tx),
		finance.ExpenseName(tx),
		finance.BillTypeLabel(tx),
		finance.CanonicalAmount(tx),
		calendar.FormatJalali(finance.CanonicalDate(tx), e.loc),
		finance.CanonicalStatus(tx),
		distribution,
		taxonomy.PaymentMethodLabel(tx.PaymentMethod),
		description,
		calendar.FormatJalali(tx.BillDue, e.loc),
		units,
		shares,
	}
}

// AllocationColumns renders the included-units and per-unit-share cells.
// Both are "—" when there is no allocation.
func AllocationColumns(alloc *domain.Allocation) (units, shares string) {
	if alloc == nil || len(alloc.UnitAllocations) == 0 {
		return noValue, noValue
	}

	names := make([]string, 0, len(alloc.UnitAllocations))
	parts := make([]string, 0, len(alloc.UnitAllocations))
	for _, ua := range alloc.UnitAllocations {
		label := ua.Label()
		names = append(names, "واحد "+label)

		amount := "0"
		if ua.Amount.Present() {
			amount = calendar.FormatToman(ua.Amount.Value)
		}
		pct := "0"
		if ua.Percentage.Present() {
			pct = strconv.FormatFloat(ua.Percentage.Value, 'f', 2, 64)
		}
		parts = append(parts, "واحد "+label+": "+amount+" تومان ("+pct+"%)")
	}
	return strings.Join(names, "، "), strings.Join(parts, "؛ ")
}
