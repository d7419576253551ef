package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("rfc3339 converted to location", func(t *testing.T) {
		got, ok := ParseDate("2024-03-19T21:00:00Z", Tehran)
		require.True(t, ok)
		assert.Equal(t, 20, got.Day())
		assert.Equal(t, time.March, got.Month())
	})

	t.Run("civil date read in location", func(t *testing.T) {
		got, ok := ParseDate("2024-01-15", Tehran)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, Tehran), got)
	})

	t.Run("django style timestamp", func(t *testing.T) {
		got, ok := ParseDate("2024-01-15 08:30:00.123456", Tehran)
		require.True(t, ok)
		assert.Equal(t, 8, got.Hour())
	})

	t.Run("jalali date", func(t *testing.T) {
		got, ok := ParseDate("1403/01/01", Tehran)
		require.True(t, ok)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, time.March, got.Month())
		assert.Equal(t, 20, got.Day())
	})

	t.Run("persian digits", func(t *testing.T) {
		got, ok := ParseDate("۱۴۰۳/۰۱/۰۱", Tehran)
		require.True(t, ok)
		assert.Equal(t, 2024, got.Year())
	})

	for _, bad := range []string{"", "not-a-date", "1403/13/01", "2024/02"} {
		_, ok := ParseDate(bad, Tehran)
		assert.False(t, ok, bad)
	}
}

func TestFormatJalali(t *testing.T) {
	assert.Equal(t, "1403/01/01", FormatJalali("2024-03-20", Tehran))
	assert.Equal(t, "—", FormatJalali("  ", Tehran))
	assert.Equal(t, "garbage", FormatJalali("garbage", Tehran))
	assert.Equal(t, "1403/01/01 - 14:05", FormatJalaliDateTime("2024-03-20T14:05:00", Tehran))
}

func TestJalaliStamp(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, Tehran)
	assert.Equal(t, "1403_01_01", JalaliStamp(now, Tehran))
}

func TestDayBounds(t *testing.T) {
	ts := time.Date(2024, 5, 1, 13, 45, 0, 0, Tehran)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, Tehran), StartOfDay(ts, Tehran))
	end := EndOfDay(ts, Tehran)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Second())
	assert.Equal(t, 999*int(time.Millisecond), end.Nanosecond())
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"1500000":   1500000,
		"1,500,000": 1500000,
		"۱٬۵۰۰":     1500,
		" 250.5 ":   250.5,
		"۲۵۰٫۵":     250.5,
	}
	for in, want := range cases {
		got, ok := ParseAmount(in)
		require.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}

	_, ok := ParseAmount("abc")
	assert.False(t, ok)
	_, ok = ParseAmount("")
	assert.False(t, ok)
}

func TestFormatToman(t *testing.T) {
	s := FormatToman(1500000)
	assert.Contains(t, s, "۱")
	back, ok := ParseAmount(s)
	require.True(t, ok)
	assert.Equal(t, 1500000.0, back)
}
