// Package taxonomy maps backend enum values to the Persian labels and
// colour classes shown to users, and owns the expense-type catalog.
package taxonomy

// typeLabels covers expense, bill, category and transaction types in the
// spellings the backend has been seen to send.
var typeLabels = map[string]string{
	"شارژ": "شارژ", "charge": "شارژ", "Charge": "شارژ",

	"electricity": "قبض برق", "Electricity": "قبض برق", "electricity_bill": "قبض برق", "قبض برق": "قبض برق",
	"water": "قبض آب", "Water": "قبض آب", "water_bill": "قبض آب", "قبض آب": "قبض آب",
	"gas": "قبض گاز", "Gas": "قبض گاز", "gas_bill": "قبض گاز", "قبض گاز": "قبض گاز",

	"maintenance": "تعمیرات", "Maintenance": "تعمیرات", "repair": "تعمیرات", "Repair": "تعمیرات", "تعمیرات": "تعمیرات",
	"cleaning": "نظافت", "Cleaning": "نظافت", "نظافت": "نظافت",
	"security": "امنیت", "Security": "امنیت", "امنیت": "امنیت",
	"camera": "دوربین", "Camera": "دوربین", "دوربین": "دوربین",
	"parking": "پارکینگ", "Parking": "پارکینگ", "پارکینگ": "پارکینگ",
	"rent": "اجاره", "Rent": "اجاره", "اجاره": "اجاره",
	"service": "خدمات", "Service": "خدمات", "Services": "خدمات", "خدمات": "خدمات",
	"purchases": "اقلام خریدنی", "Purchases": "اقلام خریدنی", "اقلام خریدنی": "اقلام خریدنی",
	"other": "سایر", "Other": "سایر", "سایر": "سایر",

	"extra_payment": "پرداخت اضافی", "Extra Payment": "پرداخت اضافی", "پرداخت اضافی": "پرداخت اضافی",
	"shared_bill": "قبض مشترک", "Shared_bill": "قبض مشترک", "قبض مشترک": "قبض مشترک",
	"individual_invoice": "فاکتور فردی", "فاکتور فردی": "فاکتور فردی",

	"invoice": "فاکتور", "Invoice": "فاکتور", "فاکتور": "فاکتور",
	"payment": "پرداخت", "Payment": "پرداخت", "پرداخت": "پرداخت",
	"debt": "بدهی", "Debt": "بدهی", "بدهی": "بدهی",
}

var chargeTypeLabels = map[string]string{
	"current":      "شارژ جاری",
	"construction": "شارژ عمرانی",
	"parking":      "شارژ پارکینگ",
	"elevator":     "شارژ آسانسور",
	"other":        "شارژ سایر",
}

// PersianType returns the Persian label for a type value, or the value itself.
func PersianType(raw string) string {
	if label, ok := typeLabels[raw]; ok {
		return label
	}
	return raw
}

// ChargeTypeLabel labels a charge sub-type; unknown sub-types are plain "شارژ".
func ChargeTypeLabel(chargeType string) string {
	if label, ok := chargeTypeLabels[chargeType]; ok {
		return label
	}
	return "شارژ"
}

var statusLabels = map[string]string{
	"paid": "پرداخت شده", "Paid": "پرداخت شده", "پرداخت شده": "پرداخت شده", "پرداخت‌شده": "پرداخت شده",
	"pending": "منتظر پرداخت", "Pending": "منتظر پرداخت", "منتظر پرداخت": "منتظر پرداخت", "منتظر": "منتظر پرداخت",
	"cancelled": "لغو شده", "Cancelled": "لغو شده", "لغو شده": "لغو شده",
	"overdue": "سررسید گذشته", "Overdue": "سررسید گذشته", "سررسید گذشته": "سررسید گذشته",
	"approved": "تایید شده", "Approved": "تایید شده", "تایید شده": "تایید شده",
	"rejected": "تایید نشده", "Rejected": "تایید نشده", "تایید نشده": "تایید نشده",
	"awaiting_manager": "منتظر تایید مدیر", "Awaiting_manager": "منتظر تایید مدیر", "منتظر تایید مدیر": "منتظر تایید مدیر",
	"excellent": "ممتاز", "Excellent": "ممتاز", "ممتاز": "ممتاز",
}

// PersianStatus normalizes an English or Persian status to its canonical Persian label.
func PersianStatus(raw string) string {
	if label, ok := statusLabels[raw]; ok {
		return label
	}
	return raw
}

type statusStyle struct {
	text string
	bg   string
}

var statusStyles = map[string]statusStyle{
	"پرداخت شده":       {"text-green-600", "bg-green-100 text-green-700"},
	"منتظر پرداخت":     {"text-red-600", "bg-red-100 text-red-700"},
	"لغو شده":          {"text-red-600", "bg-red-100 text-red-700"},
	"سررسید گذشته":     {"text-orange-600", "bg-orange-100 text-orange-700"},
	"تایید شده":        {"text-blue-600", "bg-blue-100 text-blue-700"},
	"تایید نشده":       {"text-red-600", "bg-red-100 text-red-700"},
	"ممتاز":            {"text-yellow-600", "bg-yellow-100 text-yellow-700"},
	"منتظر تایید مدیر": {"text-yellow-600", "bg-yellow-100 text-yellow-700"},
}

var defaultStyle = statusStyle{"text-gray-600", "bg-gray-100 text-gray-700"}

func styleFor(status string) statusStyle {
	if s, ok := statusStyles[PersianStatus(status)]; ok {
		return s
	}
	return defaultStyle
}

// StatusColor returns the Tailwind text colour class for a status.
func StatusColor(status string) string { return styleFor(status).text }

// StatusBgColor returns the Tailwind badge classes for a status.
func StatusBgColor(status string) string { return styleFor(status).bg }

var distributionLabels = map[string]string{
	"equal": "تقسیم مساوی", "Equal Distribution": "تقسیم مساوی",
	"per_person": "بر اساس تعداد نفر", "Per Person": "بر اساس تعداد نفر", "person_based": "بر اساس تعداد نفر",
	"area": "بر اساس متراژ", "Area Based": "بر اساس متراژ", "area_based": "بر اساس متراژ",
	"parking": "پارکینگ", "Parking": "پارکینگ",
	"usage_based": "بر اساس مصرف", "Usage Based": "بر اساس مصرف",
	"custom": "سفارشی", "Custom": "سفارشی",
	"proportional": "نسبتی", "Proportional": "نسبتی",

	"تقسیم مساوی": "تقسیم مساوی", "بر اساس متراژ": "بر اساس متراژ", "بر اساس مصرف": "بر اساس مصرف",
	"سفارشی": "سفارشی", "نسبتی": "نسبتی", "پارکینگ": "پارکینگ",
	"بر اساس تعداد نفر": "بر اساس تعداد نفر", "بر اساس واحد": "بر اساس واحد",
}

// PersianDistributionMethod labels a cost-split method. Unknown methods are
// returned as-is; an empty method is "نامشخص".
func PersianDistributionMethod(method string) string {
	if label, ok := distributionLabels[method]; ok {
		return label
	}
	if method != "" {
		return method
	}
	return "نامشخص"
}

// Payment methods.
const (
	PaymentDirect   = "direct"
	PaymentOnline   = "online"
	PaymentFromFund = "from_fund"
)

// FromFundLabel is shown both as payment method and as system status for
// expenses drawn from the building fund.
const FromFundLabel = "برداشت از موجودی صندوق"

// PaymentMethodLabel labels a payment method; unknown methods render as "—".
func PaymentMethodLabel(method string) string {
	switch method {
	case PaymentFromFund:
		return FromFundLabel
	case PaymentDirect:
		return "مستقیم"
	case PaymentOnline:
		return "آنلاین"
	default:
		return "—"
	}
}

// unitSelections maps the expense form's target to the backend unit_selection.
var unitSelections = map[string]string{
	"all":    "all_units",
	"full":   "occupied_units",
	"empty":  "empty_units",
	"custom": "specific_units",
}

// UnitSelection maps an expense target to the backend unit_selection value.
// Unknown targets pass through; an empty target means all units.
func UnitSelection(target string) string {
	if v, ok := unitSelections[target]; ok {
		return v
	}
	if target == "" {
		return "all_units"
	}
	return target
}

// ============================================================
// Category filter tables
// ============================================================

// filterTitles maps a category filter value to the Persian title the
// backend writes for it.
var filterTitles = map[string]string{
	"water_bill":       "قبض آب",
	"electricity_bill": "قبض برق",
	"gas":              "قبض گاز",
	"maintenance":      "تعمیرات",
	"cleaning":         "نظافت",
	"security":         "امنیت",
	"camera":           "دوربین",
	"parking":          "پارکینگ",
	"charge":           "شارژ",
	"repair":           "تعمیرات",
	"rent":             "اجاره",
	"service":          "خدمات",
	"other":            "سایر",
}

// filterBillTypes maps a category filter value to the backend bill_type enum.
var filterBillTypes = map[string]string{
	"water_bill":       "water",
	"electricity_bill": "electricity",
	"gas":              "gas",
	"maintenance":      "maintenance",
	"cleaning":         "cleaning",
	"security":         "security",
	"camera":           "camera",
	"parking":          "parking",
	"charge":           "charge",
	"repair":           "maintenance",
	"rent":             "other",
	"service":          "other",
	"other":            "other",
}

// FilterTitle returns the fixed Persian title for a category filter value.
func FilterTitle(category string) (string, bool) {
	v, ok := filterTitles[category]
	return v, ok
}

// FilterBillType returns the fixed backend bill_type for a category filter value.
func FilterBillType(category string) (string, bool) {
	v, ok := filterBillTypes[category]
	return v, ok
}
