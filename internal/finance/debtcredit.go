package finance

import (
	"github.com/melking/melking-bfa-go/internal/domain"
)

// Persian role labels for the debt/credit sheet.
const (
	RoleOwnerWithTenant = "مالک دارای مستاجر"
	RoleOwner           = "مالک"
	RoleTenant          = "مستاجر"
	RoleOwnerResident   = "مالک و ساکن"
	RoleResident        = "ساکن"
	RoleEmpty           = "خالی"
)

// RoleLabel infers who occupies u from its role and name fields.
func RoleLabel(u *domain.BuildingUnit) string {
	switch u.Role {
	case "owner":
		if u.TenantFullName != "" {
			return RoleOwnerWithTenant
		}
		return RoleOwner
	case "tenant":
		return RoleTenant
	}
	switch {
	case u.OwnerName != "" && u.TenantFullName != "":
		return RoleOwnerResident
	case u.OwnerName != "":
		return RoleOwner
	case u.TenantFullName != "":
		return RoleResident
	default:
		return RoleEmpty
	}
}

// UnitBalance returns the backend balance when supplied, otherwise credit minus debt.
func UnitBalance(u *domain.BuildingUnit) float64 {
	if u.Balance.Present() {
		return u.Balance.Value
	}
	return u.TotalCredit.Value - u.TotalDebt.Value
}

// Last-change labels.
const (
	ChangeDebtDecreased   = "کاهش بدهی"
	ChangeCreditIncreased = "افزایش بستانکاری"
	ChangePayment         = "پرداخت"
)

// LastChangeLabel describes a unit's last change from its current totals.
// It does not look at the change record itself, so a unit carrying both
// debt and credit is always reported as a credit increase.
func LastChangeLabel(totalDebt, totalCredit float64) string {
	switch {
	case totalDebt > 0 && totalCredit == 0:
		return ChangeDebtDecreased
	case totalCredit > 0:
		return ChangeCreditIncreased
	default:
		return ChangePayment
	}
}

// Decorate fills the derived fields of each unit in place.
func Decorate(units []domain.BuildingUnit) {
	for i := range units {
		u := &units[i]
		if u.LastChange != nil {
			u.LastChangeLabel = LastChangeLabel(u.TotalDebt.Value, u.TotalCredit.Value)
		}
	}
}

// Summarize totals debt, credit and balance across units.
func Summarize(units []domain.BuildingUnit) domain.DebtCreditSummary {
	s := domain.DebtCreditSummary{UnitsCount: len(units)}
	for i := range units {
		s.TotalUnitsDebt += units[i].TotalDebt.Value
		s.TotalUnitsCredit += units[i].TotalCredit.Value
		s.TotalUnitsBalance += UnitBalance(&units[i])
	}
	return s
}

// OwnUnits returns the units that belong to the caller, matched by phone
// number, tenant phone number, owner id or owner username.
func OwnUnits(units []domain.BuildingUnit, c domain.Caller) []domain.BuildingUnit {
	var out []domain.BuildingUnit
	for _, u := range units {
		if belongsTo(&u, c) {
			out = append(out, u)
		}
	}
	return out
}

func belongsTo(u *domain.BuildingUnit, c domain.Caller) bool {
	if c.Phone != "" && (u.PhoneNumber == c.Phone || u.TenantPhoneNumber == c.Phone) {
		return true
	}
	if u.Owner == nil {
		return false
	}
	return (c.UserID != "" && u.Owner.ID.String() == c.UserID) ||
		(c.Username != "" && u.Owner.Username == c.Username)
}

// UnitFromDebt builds the single-unit row for the own-unit fallback.
// The unit number comes from the unit listing when the debt record lacks it.
func UnitFromDebt(d domain.UnitDebt, listed domain.BuildingUnit) domain.BuildingUnit {
	u := listed
	u.UnitsID = domain.FlexString(listed.Key())
	if d.UnitID != "" {
		u.UnitsID = d.UnitID
	}
	if d.UnitNumber != "" {
		u.UnitNumber = d.UnitNumber
	}
	u.TotalDebt = d.TotalDebt
	u.TotalCredit = d.TotalCredit
	u.Balance = d.Balance
	u.LastChange = d.LastChange
	return u
}
