package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melking/melking-bfa-go/internal/domain"
)

func TestPersianLabels(t *testing.T) {
	assert.Equal(t, "قبض آب", PersianType("water"))
	assert.Equal(t, "قبض مشترک", PersianType("shared_bill"))
	assert.Equal(t, "unknown_kind", PersianType("unknown_kind"))

	assert.Equal(t, "پرداخت شده", PersianStatus("paid"))
	assert.Equal(t, "پرداخت شده", PersianStatus("پرداخت‌شده"))
	assert.Equal(t, "منتظر پرداخت", PersianStatus("منتظر"))
	assert.Equal(t, "whatever", PersianStatus("whatever"))

	assert.Equal(t, "شارژ عمرانی", ChargeTypeLabel("construction"))
	assert.Equal(t, "شارژ", ChargeTypeLabel("mystery"))
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, "text-green-600", StatusColor("paid"))
	assert.Equal(t, "bg-orange-100 text-orange-700", StatusBgColor("Overdue"))
	assert.Equal(t, "text-gray-600", StatusColor(""))
}

func TestPersianDistributionMethod(t *testing.T) {
	assert.Equal(t, "تقسیم مساوی", PersianDistributionMethod("equal"))
	assert.Equal(t, "بر اساس متراژ", PersianDistributionMethod("area_based"))
	assert.Equal(t, "odd", PersianDistributionMethod("odd"))
	assert.Equal(t, "نامشخص", PersianDistributionMethod(""))
}

func TestPaymentMethodLabel(t *testing.T) {
	assert.Equal(t, FromFundLabel, PaymentMethodLabel("from_fund"))
	assert.Equal(t, "مستقیم", PaymentMethodLabel("direct"))
	assert.Equal(t, "آنلاین", PaymentMethodLabel("online"))
	assert.Equal(t, "—", PaymentMethodLabel("cash"))
}

func TestFilterTables(t *testing.T) {
	title, ok := FilterTitle("repair")
	require.True(t, ok)
	assert.Equal(t, "تعمیرات", title)

	bt, ok := FilterBillType("repair")
	require.True(t, ok)
	assert.Equal(t, "maintenance", bt)

	_, ok = FilterBillType("purchases")
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	in := []domain.ExpenseType{
		{Value: Sentinel, Label: "افزودن"},
		{Value: "custom_gym", Label: "باشگاه"},
		{Value: Sentinel, Label: "افزودن"},
	}
	out, changed := Purge(in)
	assert.True(t, changed)
	assert.Equal(t, []domain.ExpenseType{{Value: "custom_gym", Label: "باشگاه"}}, out)
	assert.Len(t, in, 3, "input must not be mutated")

	_, changed = Purge(out)
	assert.False(t, changed)
}

func TestCatalog(t *testing.T) {
	c := NewCatalog([]domain.ExpenseType{
		{Value: Sentinel, Label: "افزودن"},
		{Value: "custom_gym", Label: "باشگاه"},
		{Value: "custom_gym", Label: "duplicate"},
		{Value: "charge", Label: "shadowed builtin"},
	})

	assert.Len(t, c.Types(), len(BuiltinExpenseTypes)+1)
	assert.Equal(t, []domain.ExpenseType{{Value: "custom_gym", Label: "باشگاه"}}, c.Custom())
	assert.Equal(t, "شارژ", c.Labels()["charge"])

	t.Run("add dedups by value", func(t *testing.T) {
		assert.False(t, c.Add(domain.ExpenseType{Value: "custom_gym", Label: "x"}))
		assert.True(t, c.Add(domain.ExpenseType{Value: "custom_pool", Label: "استخر"}))
		assert.True(t, c.Has("custom_pool"))
	})

	t.Run("sentinel never enters", func(t *testing.T) {
		assert.False(t, c.Add(domain.ExpenseType{Value: Sentinel, Label: "x"}))
		for _, cat := range c.Categories() {
			assert.NotEqual(t, Sentinel, cat.Value)
		}
	})

	t.Run("categories start with all", func(t *testing.T) {
		cats := c.Categories()
		require.NotEmpty(t, cats)
		assert.Equal(t, domain.ExpenseType{Value: "all", Label: AllLabel}, cats[0])
		assert.Len(t, cats, len(c.Types())+1)
	})
}

func TestCustomValue(t *testing.T) {
	assert.Equal(t, "custom_gym_fees", CustomValue("  Gym  Fees "))
	assert.Equal(t, "custom_gym", CustomValue("custom_gym"))
	assert.Equal(t, "gym fees", CustomName("custom_gym_fees"))
}

func TestUnitSelection(t *testing.T) {
	assert.Equal(t, "all_units", UnitSelection("all"))
	assert.Equal(t, "occupied_units", UnitSelection("full"))
	assert.Equal(t, "empty_units", UnitSelection("empty"))
	assert.Equal(t, "specific_units", UnitSelection("custom"))
	assert.Equal(t, "all_units", UnitSelection(""))
	assert.Equal(t, "floor_2", UnitSelection("floor_2"))
}
