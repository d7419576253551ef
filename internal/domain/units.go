package domain

// ============================================================
// Building units and debt/credit
// ============================================================

// Building identifies the building a report belongs to.
type Building struct {
	ID           FlexString `json:"id"`
	Title        string     `json:"title,omitempty"`
	Name         string     `json:"name,omitempty"`
	BuildingCode string     `json:"building_code,omitempty"`
}

// DisplayName returns title, then name, then the generic word for building.
func (b Building) DisplayName() string {
	switch {
	case b.Title != "":
		return b.Title
	case b.Name != "":
		return b.Name
	default:
		return "ساختمان"
	}
}

// UnitOwner is the owner block nested in a unit listing.
type UnitOwner struct {
	ID       FlexString `json:"id,omitempty"`
	Username string     `json:"username,omitempty"`
}

// BuildingUnit carries a unit's identity and its debt/credit totals.
// The identifier has three observed aliases; use Key to reconcile them.
type BuildingUnit struct {
	UnitsID FlexString `json:"units_id,omitempty"`
	UnitID  FlexString `json:"unit_id,omitempty"`
	ID      FlexString `json:"id,omitempty"`

	UnitNumber     FlexString `json:"unit_number,omitempty"`
	FullName       string     `json:"full_name,omitempty"`
	OwnerName      string     `json:"owner_name,omitempty"`
	TenantFullName string     `json:"tenant_full_name,omitempty"`
	Role           string     `json:"role,omitempty"` // owner | tenant | empty | owner+tenant

	PhoneNumber       string     `json:"phone_number,omitempty"`
	TenantPhoneNumber string     `json:"tenant_phone_number,omitempty"`
	Owner             *UnitOwner `json:"owner,omitempty"`

	TotalDebt   FlexFloat   `json:"total_debt"`
	TotalCredit FlexFloat   `json:"total_credit"`
	Balance     FlexFloat   `json:"balance"`
	LastChange  *LastChange `json:"last_change,omitempty"`

	// LastChangeLabel is derived on the way out; see finance.LastChangeLabel.
	LastChangeLabel string `json:"last_change_label,omitempty"`
}

// Key returns the unit identifier, preferring units_id, then unit_id, then id.
func (u BuildingUnit) Key() string {
	switch {
	case u.UnitsID != "":
		return u.UnitsID.String()
	case u.UnitID != "":
		return u.UnitID.String()
	default:
		return u.ID.String()
	}
}

// LastChange is the most recent movement on a unit's account.
type LastChange struct {
	Type        string    `json:"type,omitempty"`
	Amount      FlexFloat `json:"amount"`
	Description string    `json:"description,omitempty"`
}

// DebtCreditSummary totals a set of units.
type DebtCreditSummary struct {
	TotalUnitsDebt    float64 `json:"total_units_debt"`
	TotalUnitsCredit  float64 `json:"total_units_credit"`
	TotalUnitsBalance float64 `json:"total_units_balance"`
	UnitsCount        int     `json:"units_count"`
}

// DebtCreditResult is the shape returned for the debt/credit view, both for
// the building-wide call and the own-unit fallback.
type DebtCreditResult struct {
	Building        *Building         `json:"building,omitempty"`
	Summary         DebtCreditSummary `json:"summary"`
	Units           []BuildingUnit    `json:"units"`
	IsManager       bool              `json:"is_manager"`
	ShowOnlyOwnUnit bool              `json:"show_only_own_unit"`
}

// UnitDebt is the single-unit debt summary used as the 403 fallback.
type UnitDebt struct {
	UnitID      FlexString  `json:"unit_id,omitempty"`
	UnitNumber  FlexString  `json:"unit_number,omitempty"`
	TotalDebt   FlexFloat   `json:"total_debt"`
	TotalCredit FlexFloat   `json:"total_credit"`
	Balance     FlexFloat   `json:"balance"`
	LastChange  *LastChange `json:"last_change,omitempty"`
}

// VisibilitySettings controls whether residents may see the building-wide debt/credit view.
type VisibilitySettings struct {
	BuildingID      FlexString `json:"building_id"`
	ShowToResidents bool       `json:"show_to_residents"`
}
