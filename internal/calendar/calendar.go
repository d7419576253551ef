// Package calendar converts between Gregorian and Jalali dates and
// normalizes the amount strings typed by users or sent by the backend.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tehran is the default location for civil-day arithmetic.
var Tehran = mustLoad("Asia/Tehran")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IRST", 3*3600+1800)
	}
	return loc
}

// jalaliCutoff separates Jalali years (~1300-1500) from Gregorian ones.
const jalaliCutoff = 1700

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
}

var civilLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses an ISO-ish timestamp or a Jalali YYYY/MM/DD date.
// Strings without a zone are read as civil time in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = Tehran
	}
	s = strings.TrimSpace(ToLatinDigits(s))
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := parseJalali(s, loc); ok {
		return t, true
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range civilLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseJalali(s string, loc *time.Location) (time.Time, bool) {
	datePart := s
	if i := strings.IndexAny(s, " T"); i > 0 {
		datePart = s[:i]
	}
	sep := "/"
	if !strings.Contains(datePart, sep) {
		sep = "-"
	}
	parts := strings.Split(datePart, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if y >= jalaliCutoff || m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	if m > 6 && d > 30 {
		return time.Time{}, false
	}
	return ptime.Date(y, ptime.Month(m), d, 0, 0, 0, 0, loc).Time(), true
}

// StartOfDay truncates t to midnight of its civil day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's civil day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).Add(24*time.Hour - time.Millisecond)
}

// FormatJalali renders s as jYYYY/jMM/jDD. Empty input yields "—";
// unparseable input is returned unchanged.
func FormatJalali(s string, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	t, ok := ParseDate(s, loc)
	if !ok {
		return s
	}
	return JalaliDate(t, loc)
}

// FormatJalaliDateTime renders s as jYYYY/jMM/jDD - HH:mm.
func FormatJalaliDateTime(s string, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	t, ok := ParseDate(s, loc)
	if !ok {
		return s
	}
	if loc == nil {
		loc = Tehran
	}
	t = t.In(loc)
	return fmt.Sprintf("%s - %02d:%02d", JalaliDate(t, loc), t.Hour(), t.Minute())
}

// JalaliDate formats t as jYYYY/jMM/jDD in loc.
func JalaliDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = Tehran
	}
	pt := ptime.New(t.In(loc))
	return fmt.Sprintf("%04d/%02d/%02d", pt.Year(), int(pt.Month()), pt.Day())
}

// JalaliStamp formats t as jYYYY_jMM_jDD for use in filenames.
func JalaliStamp(t time.Time, loc *time.Location) string {
	return strings.ReplaceAll(JalaliDate(t, loc), "/", "_")
}

// ============================================================
// Amounts
// ============================================================

var digitReplacer = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// ToLatinDigits converts Persian and Arabic-Indic digits to ASCII.
func ToLatinDigits(s string) string {
	return digitReplacer.Replace(s)
}

var separatorReplacer = strings.NewReplacer(",", "", "٬", "", "،", "", " ", "")

// ParseAmount parses a user-typed amount such as "1,500,000" or "۱٬۵۰۰".
// The decimal separator may be "." or "٫".
func ParseAmount(s string) (float64, bool) {
	s = separatorReplacer.Replace(ToLatinDigits(strings.TrimSpace(s)))
	s = strings.ReplaceAll(s, "٫", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var faPrinter = message.NewPrinter(language.Persian)

// FormatToman renders v with Persian digits and grouping, up to three
// fraction digits.
func FormatToman(v float64) string {
	return faPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}
