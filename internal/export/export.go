// Package export builds the Excel workbooks for the ledger and the unit
// debt/credit list. Every cell is derived through the same canonical
// accessors the filter engine uses, so a workbook matches the on-screen rows.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/observability"
	"github.com/melking/melking-bfa-go/internal/infra/resilience"
	"github.com/melking/melking-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Export names, used in errors and as metric labels.
const (
	KindTransactions = "transactions"
	KindDebtCredit   = "debt_credit"
)

// ErrWorkbook wraps any failure while building or serialising a workbook.
// No partial file is ever returned alongside it.
var ErrWorkbook = errors.New("workbook construction failed")

// File is a finished workbook.
type File struct {
	ID      string
	Name    string
	Content []byte
	Rows    int
}

// Exporter produces workbooks.
type Exporter struct {
	allocations port.AllocationFetcher
	bulkhead    *resilience.Bulkhead
	loc         *time.Location
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewExporter creates an Exporter. At most maxConcurrency allocation fetches
// run at once.
func NewExporter(allocations port.AllocationFetcher, maxConcurrency int, loc *time.Location, metrics *observability.Metrics, logger *zap.Logger) *Exporter {
	if loc == nil {
		loc = calendar.Tehran
	}
	return &Exporter{
		allocations: allocations,
		bulkhead:    resilience.NewBulkhead(maxConcurrency),
		loc:         loc,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock replaces the clock used for filenames.
func (e *Exporter) SetClock(now func() time.Time) {
	e.now = now
}

var (
	disallowedName = regexp.MustCompile(`[^\x{0600}-\x{06FF}\x{0750}-\x{077F}\w\s]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// SanitizeName keeps Persian letters, word characters and whitespace, then
// turns whitespace runs into underscores.
func SanitizeName(name string) string {
	return whitespaceRun.ReplaceAllString(disallowedName.ReplaceAllString(name, ""), "_")
}

func (e *Exporter) filename(prefix string, building *domain.Building) string {
	var b domain.Building
	if building != nil {
		b = *building
	}
	return fmt.Sprintf("%s_%s_%s.xlsx", prefix, SanitizeName(b.DisplayName()), calendar.JalaliStamp(e.now(), e.loc))
}

func (e *Exporter) finish(kind, name string, content []byte, rows int, start time.Time) *File {
	f := &File{ID: uuid.NewString(), Name: name, Content: content, Rows: rows}
	e.metrics.AddExportedRows(kind, rows)
	e.logger.Info("export.xlsx.ok",
		zap.String("export_id", f.ID),
		zap.String("export", kind),
		zap.Int("rows", rows),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return f
}
