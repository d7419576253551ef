package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/taxonomy"
)

const (
	chargeWord     = "شارژ"
	purchasePrefix = "اقلام خریدنی"
	otherBillType  = "other"
)

func containsCharge(s string) bool {
	return strings.Contains(s, chargeWord)
}

// Result is the filtered view of a ledger.
type Result struct {
	Transactions []domain.Transaction
	TotalCost    float64
}

// Engine filters ledgers. Civil days are computed in its location.
type Engine struct {
	loc *time.Location
}

// NewEngine returns an engine that compares dates in loc (Asia/Tehran when nil).
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = calendar.Tehran
	}
	return &Engine{loc: loc}
}

// Filter sorts txs newest first and keeps the transactions matching every
// criterion of spec. labels maps catalog values to their labels.
// The input slice is not modified.
func (e *Engine) Filter(txs []domain.Transaction, spec domain.FilterSpec, labels map[string]string) Result {
	sorted := e.sortByDate(txs)

	search := strings.ToLower(strings.TrimSpace(spec.SearchTerm))
	m := categoryMatcher(spec, labels)

	out := make([]domain.Transaction, 0, len(sorted))
	var total float64
	for i := range sorted {
		tx := &sorted[i]
		if !m(tx) || !matchesSearch(tx, search) || !e.matchesDate(tx, spec.DateRange) || !matchesAmount(tx, spec.AmountRange) {
			continue
		}
		out = append(out, *tx)
		total += CanonicalAmount(tx)
	}
	return Result{Transactions: out, TotalCost: total}
}

// TotalCost sums the canonical amount of txs.
func TotalCost(txs []domain.Transaction) float64 {
	var total float64
	for i := range txs {
		total += CanonicalAmount(&txs[i])
	}
	return total
}

func (e *Engine) sortByDate(txs []domain.Transaction) []domain.Transaction {
	type keyed struct {
		tx domain.Transaction
		at int64
	}
	ks := make([]keyed, len(txs))
	for i, tx := range txs {
		ks[i] = keyed{tx: tx, at: e.timestamp(&tx)}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].at > ks[j].at })

	out := make([]domain.Transaction, len(ks))
	for i, k := range ks {
		out[i] = k.tx
	}
	return out
}

// timestamp returns the canonical date in milliseconds; missing or
// unparseable dates sort as the epoch.
func (e *Engine) timestamp(tx *domain.Transaction) int64 {
	t, ok := calendar.ParseDate(CanonicalDate(tx), e.loc)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

type matcher func(*domain.Transaction) bool

func matchAll(*domain.Transaction) bool  { return true }
func matchNone(*domain.Transaction) bool { return false }

func categoryMatcher(spec domain.FilterSpec, labels map[string]string) matcher {
	category := spec.Category
	if category == "" {
		category = domain.CategoryAll
	}

	switch {
	case category == taxonomy.Sentinel:
		return matchNone
	case spec.ViewMode == domain.ViewUnit, spec.ViewMode == domain.ViewCharge:
		// unit view is scoped by the backend, charge view by the caller
		return matchAll
	case category == domain.CategoryAll:
		return matchAll
	case category == "purchases":
		return func(tx *domain.Transaction) bool {
			return strings.HasPrefix(DisplayTitle(tx), purchasePrefix)
		}
	case strings.HasPrefix(category, taxonomy.CustomPrefix):
		name := taxonomy.CustomName(category)
		return func(tx *domain.Transaction) bool {
			return tx.Title == name ||
				tx.BillType == name ||
				(tx.BillType == otherBillType && tx.Description == name)
		}
	}

	title, hasTitle := taxonomy.FilterTitle(category)
	billType, hasBillType := taxonomy.FilterBillType(category)
	label, hasLabel := labels[category]

	return func(tx *domain.Transaction) bool {
		switch {
		case hasTitle && tx.Title != "" && tx.Title == title:
		case hasBillType && tx.BillType != "" && tx.BillType == billType:
		case tx.Category != "" && tx.Category == category:
		case hasLabel && tx.Title != "" && tx.Title == label:
		case hasBillType && tx.ExpenseType != "" && tx.ExpenseType == billType:
		case hasTitle && tx.TransactionType != "" && tx.TransactionType == title:
		default:
			return false
		}
		return true
	}
}

func matchesSearch(tx *domain.Transaction, search string) bool {
	if search == "" {
		return true
	}
	fields := [...]string{
		tx.Title,
		tx.Description,
		tx.Status,
		tx.StatusLabel,
		CanonicalDate(tx),
		tx.ExpenseName,
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	if amount := CanonicalAmountText(tx); amount != "" {
		return strings.Contains(amount, search) ||
			strings.Contains(amount, calendar.ToLatinDigits(search))
	}
	return false
}

func (e *Engine) matchesDate(tx *domain.Transaction, r *domain.DateRange) bool {
	if r == nil {
		return true
	}
	raw := CanonicalDate(tx)
	if raw == "" {
		return true
	}
	t, ok := calendar.ParseDate(raw, e.loc)
	if !ok {
		return true
	}
	day := calendar.StartOfDay(t, e.loc)
	if !r.From.IsZero() && day.Before(calendar.StartOfDay(r.From, e.loc)) {
		return false
	}
	if !r.To.IsZero() && day.After(calendar.EndOfDay(r.To, e.loc)) {
		return false
	}
	return true
}

func matchesAmount(tx *domain.Transaction, r domain.AmountRange) bool {
	// a non-numeric amount fails neither bound
	if (r.Min == nil && r.Max == nil) || amountNaN(tx) {
		return true
	}
	amount := CanonicalAmount(tx)
	if r.Min != nil && amount < *r.Min {
		return false
	}
	if r.Max != nil && amount > *r.Max {
		return false
	}
	return true
}
