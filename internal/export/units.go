package export

import (
	"context"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/finance"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("export")

const (
	unitsSheet  = "بدهکاری و بستانکاری واحدها"
	unitsPrefix = "بدهکاری_بستانکاری_واحدها"
)

var unitHeaders = []string{
	"ردیف",
	"شماره واحد",
	"نام واحد",
	"نقش",
	"بدهکاری (تومان)",
	"بستانکاری (تومان)",
	"مانده حساب (تومان)",
}

var unitWidths = []float64{6, 12, 28, 18, 18, 18, 20}

// UnitsDebtCredit exports one row per unit. The data is already in memory;
// nothing is fetched.
func (e *Exporter) UnitsDebtCredit(ctx context.Context, units []domain.BuildingUnit, building *domain.Building) (*File, error) {
	_, span := tracer.Start(ctx, "Exporter.UnitsDebtCredit")
	defer span.End()

	if len(units) == 0 {
		return nil, &domain.ErrNothingToExport{Export: KindDebtCredit}
	}
	start := time.Now()

	out := make([][]any, len(units))
	for i := range units {
		u := &units[i]
		out[i] = []any{
			i + 1,
			unitNumber(u),
			unitName(u),
			finance.RoleLabel(u),
			u.TotalDebt.Value,
			u.TotalCredit.Value,
			finance.UnitBalance(u),
		}
	}

	content, err := render(sheet{name: unitsSheet, headers: unitHeaders, widths: unitWidths, rows: out})
	if err != nil {
		e.logger.Error("export.xlsx.failed", zap.String("export", KindDebtCredit), zap.Error(err))
		return nil, err
	}
	return e.finish(KindDebtCredit, e.filename(unitsPrefix, building), content, len(units), start), nil
}

func unitNumber(u *domain.BuildingUnit) string {
	switch {
	case u.UnitNumber != "":
		return u.UnitNumber.String()
	case u.UnitsID != "":
		return u.UnitsID.String()
	default:
		return noValue
	}
}

func unitName(u *domain.BuildingUnit) string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.OwnerName != "":
		return u.OwnerName
	default:
		return noValue
	}
}
