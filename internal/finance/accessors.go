// Package finance holds the ledger computations: canonical field
// resolution, the transaction filter engine and debt/credit aggregation.
package finance

import (
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/taxonomy"
)

// Accessor reads one source field of a transaction.
type Accessor struct {
	Field string
	Get   func(*domain.Transaction) string
}

// Chain is an ordered list of accessors; the first non-empty result wins.
type Chain []Accessor

// First returns the first non-empty value in the chain and the field it came from.
func (c Chain) First(tx *domain.Transaction) (value, field string) {
	for _, a := range c {
		if v := a.Get(tx); v != "" {
			return v, a.Field
		}
	}
	return "", ""
}

func amountText(f domain.FlexFloat) string {
	if !f.Present() {
		return ""
	}
	return f.String()
}

// Canonical field priorities. Filters and exports both resolve through these.
var (
	TitleChain = Chain{
		{"title", func(t *domain.Transaction) string { return t.Title }},
		{"description", func(t *domain.Transaction) string { return t.Description }},
		{"category", func(t *domain.Transaction) string { return t.Category }},
		{"type", func(t *domain.Transaction) string { return t.Type }},
		{"transaction_type", func(t *domain.Transaction) string { return t.TransactionType }},
	}

	AmountChain = Chain{
		{"amount", func(t *domain.Transaction) string { return amountText(t.Amount) }},
		{"total_amount", func(t *domain.Transaction) string { return amountText(t.TotalAmount) }},
	}

	DateChain = Chain{
		{"date", func(t *domain.Transaction) string { return t.Date }},
		{"billing_date", func(t *domain.Transaction) string { return t.BillingDate }},
		{"issue_date", func(t *domain.Transaction) string { return t.IssueDate }},
		{"created_at", func(t *domain.Transaction) string { return t.CreatedAt }},
	}

	StatusChain = Chain{
		{"status", func(t *domain.Transaction) string { return t.Status }},
		{"status_label", func(t *domain.Transaction) string { return t.StatusLabel }},
	}

	BillTypeChain = Chain{
		{"bill_type", func(t *domain.Transaction) string { return t.BillType }},
		{"category", func(t *domain.Transaction) string { return t.Category }},
		{"type", func(t *domain.Transaction) string { return t.Type }},
	}

	ExpenseNameChain = Chain{
		{"expense_name", func(t *domain.Transaction) string { return t.ExpenseName }},
		{"expense_details.expense_name", func(t *domain.Transaction) string {
			if t.ExpenseDetails == nil {
				return ""
			}
			return t.ExpenseDetails.ExpenseName
		}},
	}
)

const (
	untitled      = "بدون عنوان"
	unknownStatus = "نامشخص"
	emptyCell     = "—"
)

// DisplayTitle is the Persian title shown for tx.
func DisplayTitle(tx *domain.Transaction) string {
	raw, _ := TitleChain.First(tx)
	if raw == "" {
		raw = untitled
	}
	return taxonomy.PersianType(raw)
}

// CanonicalAmount is the numeric amount of tx, 0 when absent.
func CanonicalAmount(tx *domain.Transaction) float64 {
	switch _, field := AmountChain.First(tx); field {
	case "amount":
		return tx.Amount.Value
	case "total_amount":
		return tx.TotalAmount.Value
	default:
		return 0
	}
}

// amountNaN reports whether the canonical amount of tx is a string with no
// numeric prefix.
func amountNaN(tx *domain.Transaction) bool {
	switch _, field := AmountChain.First(tx); field {
	case "amount":
		return tx.Amount.NaN
	case "total_amount":
		return tx.TotalAmount.NaN
	default:
		return false
	}
}

// CanonicalAmountText is the amount as it arrived, for text search.
func CanonicalAmountText(tx *domain.Transaction) string {
	v, _ := AmountChain.First(tx)
	return v
}

// CanonicalDate is the raw date string of tx, "" when absent.
func CanonicalDate(tx *domain.Transaction) string {
	v, _ := DateChain.First(tx)
	return v
}

// CanonicalStatus is the Persian status label of tx. Expenses paid from the
// building fund report the fund label instead of their status.
func CanonicalStatus(tx *domain.Transaction) string {
	if tx.PaymentMethod == taxonomy.PaymentFromFund {
		return taxonomy.FromFundLabel
	}
	raw, _ := StatusChain.First(tx)
	if raw == "" {
		raw = unknownStatus
	}
	return taxonomy.PersianStatus(raw)
}

// BillTypeLabel is the Persian expense type shown for tx.
func BillTypeLabel(tx *domain.Transaction) string {
	raw, _ := BillTypeChain.First(tx)
	if raw == "" {
		return emptyCell
	}
	return taxonomy.PersianType(raw)
}

// ExpenseName returns the expense name of tx or "—".
func ExpenseName(tx *domain.Transaction) string {
	if v, _ := ExpenseNameChain.First(tx); v != "" {
		return v
	}
	return emptyCell
}

// IsSharedBill reports whether tx is a shared bill with an allocation to fetch.
func IsSharedBill(tx *domain.Transaction) bool {
	return tx.ID != "" && (tx.Type == "shared_bill" || tx.Category == "shared_bill")
}

// IsChargeEntry reports whether tx belongs in the charge view.
func IsChargeEntry(tx *domain.Transaction) bool {
	return containsCharge(tx.Title) ||
		tx.ExpenseType == "charge" ||
		tx.ChargeType != "" ||
		tx.Type == "charge" ||
		tx.Category == "charge"
}
