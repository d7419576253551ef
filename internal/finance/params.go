package finance

import (
	"strings"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
)

// MsgInvalidFilter is the user-facing message for any malformed filter value.
const MsgInvalidFilter = "مقدار فیلتر نامعتبر است"

// ParseFilter builds a FilterSpec from named string parameters: view,
// category, search, from, to, min and max. Dates may be Gregorian or Jalali;
// amounts may use Persian digits. Blank parameters leave that dimension open.
func ParseFilter(get func(string) string, loc *time.Location) (domain.FilterSpec, error) {
	spec := domain.FilterSpec{
		Category:   get("category"),
		SearchTerm: get("search"),
		ViewMode:   domain.ViewMode(get("view")),
	}
	switch spec.ViewMode {
	case "":
		spec.ViewMode = domain.ViewBuilding
	case domain.ViewBuilding, domain.ViewUnit, domain.ViewCharge:
	default:
		return spec, &domain.ErrValidation{Field: "view", Message: MsgInvalidFilter}
	}

	from, to := strings.TrimSpace(get("from")), strings.TrimSpace(get("to"))
	if from != "" || to != "" {
		spec.DateRange = &domain.DateRange{}
		if from != "" {
			t, ok := calendar.ParseDate(from, loc)
			if !ok {
				return spec, &domain.ErrValidation{Field: "from", Message: MsgInvalidFilter}
			}
			spec.DateRange.From = t
		}
		if to != "" {
			t, ok := calendar.ParseDate(to, loc)
			if !ok {
				return spec, &domain.ErrValidation{Field: "to", Message: MsgInvalidFilter}
			}
			spec.DateRange.To = t
		}
	}

	for _, p := range []struct {
		key string
		dst **float64
	}{{"min", &spec.AmountRange.Min}, {"max", &spec.AmountRange.Max}} {
		raw := strings.TrimSpace(get(p.key))
		if raw == "" {
			continue
		}
		v, ok := calendar.ParseAmount(raw)
		if !ok {
			return spec, &domain.ErrValidation{Field: p.key, Message: MsgInvalidFilter}
		}
		*p.dst = &v
	}
	return spec, nil
}
