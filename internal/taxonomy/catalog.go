package taxonomy

import (
	"strings"

	"github.com/melking/melking-bfa-go/internal/domain"
)

// Sentinel is the form-only "add a new type" entry. Older clients persisted
// it by mistake; it must never reach the catalog or a filter.
const Sentinel = "AddExpenseType"

// CustomPrefix marks user-added expense types.
const CustomPrefix = "custom_"

// AllLabel is the label of the match-all category.
const AllLabel = "همه"

// BuiltinExpenseTypes are always present, in this order, ahead of user-added types.
var BuiltinExpenseTypes = []domain.ExpenseType{
	{Value: "water_bill", Label: "قبض آب"},
	{Value: "electricity_bill", Label: "قبض برق"},
	{Value: "camera", Label: "دوربین"},
	{Value: "parking", Label: "پارکینگ"},
	{Value: "charge", Label: "شارژ"},
	{Value: "repair", Label: "تعمیرات"},
	{Value: "cleaning", Label: "نظافت"},
	{Value: "purchases", Label: "اقلام خریدنی"},
}

// Purge drops sentinel entries and reports whether anything was removed.
// It never mutates its input.
func Purge(types []domain.ExpenseType) ([]domain.ExpenseType, bool) {
	out := make([]domain.ExpenseType, 0, len(types))
	for _, t := range types {
		if t.Value == Sentinel {
			continue
		}
		out = append(out, t)
	}
	return out, len(out) != len(types)
}

// Catalog is the set of known expense types: built-ins followed by the
// user-added ones, unique by value.
type Catalog struct {
	types []domain.ExpenseType
	index map[string]int
}

// NewCatalog builds a catalog from the built-ins plus the stored custom types.
// Stored entries are purged of the sentinel and deduplicated by value.
func NewCatalog(stored []domain.ExpenseType) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for _, t := range BuiltinExpenseTypes {
		c.add(t)
	}
	clean, _ := Purge(stored)
	for _, t := range clean {
		c.add(t)
	}
	return c
}

func (c *Catalog) add(t domain.ExpenseType) bool {
	if t.Value == "" || t.Value == Sentinel {
		return false
	}
	if _, ok := c.index[t.Value]; ok {
		return false
	}
	c.index[t.Value] = len(c.types)
	c.types = append(c.types, t)
	return true
}

// Add inserts t unless its value is already known. It reports whether the
// catalog changed.
func (c *Catalog) Add(t domain.ExpenseType) bool {
	return c.add(t)
}

// Has reports whether value is in the catalog.
func (c *Catalog) Has(value string) bool {
	_, ok := c.index[value]
	return ok
}

// Types returns every catalog entry.
func (c *Catalog) Types() []domain.ExpenseType {
	return append([]domain.ExpenseType(nil), c.types...)
}

// Custom returns the user-added entries, the part that gets persisted.
func (c *Catalog) Custom() []domain.ExpenseType {
	return append([]domain.ExpenseType{}, c.types[len(BuiltinExpenseTypes):]...)
}

// Categories returns the filter list: "all" first, then every catalog entry.
func (c *Catalog) Categories() []domain.ExpenseType {
	out := make([]domain.ExpenseType, 0, len(c.types)+1)
	out = append(out, domain.ExpenseType{Value: domain.CategoryAll, Label: AllLabel})
	return append(out, c.types...)
}

// Labels returns value -> label for every catalog entry.
func (c *Catalog) Labels() map[string]string {
	m := make(map[string]string, len(c.types))
	for _, t := range c.types {
		m[t.Value] = t.Label
	}
	return m
}

// CustomValue turns a free-text name into a custom category value:
// "Gym Fees" -> "custom_gym_fees". Values already carrying the prefix are kept.
func CustomValue(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, CustomPrefix) {
		return name
	}
	return CustomPrefix + strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// CustomName reverses CustomValue for matching: "custom_gym_fees" -> "gym fees".
func CustomName(value string) string {
	return strings.ReplaceAll(strings.TrimPrefix(value, CustomPrefix), "_", " ")
}
