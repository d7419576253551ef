package domain

// ============================================================
// Transactions (shared bills, individual invoices, balance entries)
// ============================================================

// Transaction is one row of a building's financial ledger as returned by the
// backend. Several fields describe the same concept because different
// endpoints populate different aliases; canonical values are derived by the
// finance package, never read directly from a single field.
type Transaction struct {
	ID FlexString `json:"id,omitempty"`

	Title           string `json:"title,omitempty"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"` // shared_bill | individual_invoice | ...
	Type            string `json:"type,omitempty"`
	TransactionType string `json:"transaction_type,omitempty"`

	Amount      FlexFloat `json:"amount"`
	TotalAmount FlexFloat `json:"total_amount"`

	Date        string `json:"date,omitempty"`
	BillingDate string `json:"billing_date,omitempty"`
	IssueDate   string `json:"issue_date,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	BillDue     string `json:"bill_due,omitempty"`

	Status      string `json:"status,omitempty"`
	StatusLabel string `json:"status_label,omitempty"`

	BillType    string `json:"bill_type,omitempty"`
	ExpenseType string `json:"expense_type,omitempty"`
	ChargeType  string `json:"charge_type,omitempty"`

	ExpenseName    string          `json:"expense_name,omitempty"`
	ExpenseDetails *ExpenseDetails `json:"expense_details,omitempty"`

	DistributionMethod string `json:"distribution_method,omitempty"` // equal | per_person | area | parking | custom
	PaymentMethod      string `json:"payment_method,omitempty"`      // direct | online | from_fund

	UnitCount   int          `json:"unit_count,omitempty"`
	UnitDetails []UnitDetail `json:"unit_details,omitempty"`
}

// ExpenseDetails is the nested expense block some endpoints embed.
type ExpenseDetails struct {
	ExpenseName string `json:"expense_name,omitempty"`
}

// UnitDetail is the optional per-unit breakdown embedded in a shared bill.
type UnitDetail struct {
	UnitsID    FlexString `json:"units_id,omitempty"`
	UnitNumber FlexString `json:"unit_number,omitempty"`
	Status     string     `json:"status,omitempty"`
	Amount     FlexFloat  `json:"amount"`
	InvoiceID  FlexString `json:"invoice_id,omitempty"`
}

// Allocation is the per-unit split of a shared bill.
type Allocation struct {
	UnitAllocations []UnitAllocation `json:"unit_allocations"`
}

// UnitAllocation is one unit's share of a shared bill.
type UnitAllocation struct {
	UnitNumber FlexString `json:"unit_number,omitempty"`
	UnitID     FlexString `json:"unit_id,omitempty"`
	Amount     FlexFloat  `json:"amount"`
	Percentage FlexFloat  `json:"percentage"`
}

// Label returns the unit number, falling back to the unit id.
func (a UnitAllocation) Label() string {
	if a.UnitNumber != "" {
		return a.UnitNumber.String()
	}
	return a.UnitID.String()
}

// ============================================================
// Bill payment and expense registration
// ============================================================

// PayBillRequest pays one pending invoice or shared-bill share.
type PayBillRequest struct {
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	BuildingID     string     `json:"building_id"`
	BillID         FlexString `json:"bill_id"`
	UnitID         FlexString `json:"unit_id,omitempty"`
	Amount         FlexFloat  `json:"amount"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
}

// PayBillResponse is the backend acknowledgement of a payment.
type PayBillResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	BillID  FlexString `json:"bill_id,omitempty"`
	Status  string     `json:"status,omitempty"`
}

// ExpenseRequest is the client form for registering or updating a shared expense.
type ExpenseRequest struct {
	SharedBillID       string             `json:"shared_bill_id,omitempty"`
	BuildingID         string             `json:"building_id"`
	ExpenseType        string             `json:"expense_type"`
	ExpenseName        string             `json:"expense_name,omitempty"`
	TotalAmount        string             `json:"total_amount"`
	Target             string             `json:"target"` // all | full | empty | custom
	UnitSelection      string             `json:"unit_selection,omitempty"`
	DistributionMethod string             `json:"distribution_method"`
	Role               string             `json:"role,omitempty"`
	Description        string             `json:"description,omitempty"`
	BillDue            string             `json:"bill_due"`
	PaymentMethod      string             `json:"payment_method,omitempty"`
	SpecificUnits      []string           `json:"specific_units,omitempty"`
	CustomUnitCosts    map[string]float64 `json:"custom_unit_costs,omitempty"`
	GracePeriodDays    int                `json:"grace_period_days,omitempty"`
	AutoTransferToDebt bool               `json:"auto_transfer_to_debt,omitempty"`
	BillingDate        string             `json:"billing_date,omitempty"`
	Attachment         *Attachment        `json:"-"`
}

// Attachment is an uploaded receipt or invoice file.
type Attachment struct {
	Filename string
	Content  []byte
}

// ExpenseResponse is the backend acknowledgement for expense mutations.
type ExpenseResponse struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message,omitempty"`
	SharedBillID FlexString `json:"shared_bill_id,omitempty"`
}
