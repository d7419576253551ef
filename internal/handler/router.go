package handler

import (
	"net/http"
	"time"

	"github.com/melking/melking-bfa-go/internal/calendar"
	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/observability"
	"github.com/melking/melking-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services are the dependencies of the HTTP surface.
type Services struct {
	Finance    *service.FinanceService
	DebtCredit *service.DebtCreditService
	Catalog    *service.CatalogService
	Legal      *service.LegalService
	Verifier   TokenVerifier

	// Location is the civil-day zone for filter dates (Asia/Tehran when nil).
	Location *time.Location
	// MaxUploadBytes bounds multipart expense forms.
	MaxUploadBytes int64
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	if svc.Location == nil {
		svc.Location = calendar.Tehran
	}
	if svc.MaxUploadBytes <= 0 {
		svc.MaxUploadBytes = 10 << 20
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Catalog))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if svc.Verifier == nil {
			r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(w, http.StatusServiceUnavailable, "سرویس احراز هویت پیکربندی نشده است")
			}))
			return
		}
		r.Use(RequestCounter(metrics))
		r.Use(JWTAuthMiddleware(svc.Verifier, logger))

		// =============================================
		// 1. Ledger
		// =============================================
		r.Get("/buildings/{buildingId}/transactions", listTransactionsHandler(svc, logger))
		r.Get("/buildings/{buildingId}/transactions/export", exportTransactionsHandler(svc, logger))

		// =============================================
		// 2. Debt / credit
		// =============================================
		r.Get("/buildings/{buildingId}/debt-credit", debtCreditHandler(svc, logger))
		r.Delete("/buildings/{buildingId}/debt-credit", debtCreditResetHandler(svc))
		r.Get("/buildings/{buildingId}/debt-credit/export", exportDebtCreditHandler(svc, logger))
		r.Get("/buildings/{buildingId}/debt-credit/visibility", getVisibilityHandler(svc, logger))
		r.Post("/buildings/{buildingId}/debt-credit/visibility", toggleVisibilityHandler(svc, logger))

		// =============================================
		// 3. Bills and expenses
		// =============================================
		r.Post("/bills/pay", payBillHandler(svc, logger))
		r.Post("/expenses", registerExpenseHandler(svc, logger))
		r.Put("/expenses/{expenseId}", updateExpenseHandler(svc, logger))
		r.Delete("/expenses/{expenseId}", deleteExpenseHandler(svc, logger))

		// =============================================
		// 4. Expense types and categories
		// =============================================
		r.Get("/expense-types", listExpenseTypesHandler(svc, logger))
		r.Post("/expense-types", addExpenseTypeHandler(svc, logger))
		r.Get("/categories", listCategoriesHandler(svc, logger))

		// =============================================
		// 5. Legal assistant
		// =============================================
		r.Post("/legal-ai/ask", legalAskHandler(svc, logger))

		// =============================================
		// 6. Metrics
		// =============================================
		r.Get("/metrics/finance", financeMetricsHandler(metrics))
	})

	return r
}

// ============================================================
// Health & metrics
// ============================================================

func healthzHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "bfa-api", Status: "healthy", LastChecked: now},
		}

		overall := "healthy"
		if catalog != nil {
			start := time.Now()
			_, err := catalog.ListExpenseTypes(r.Context())
			status := "healthy"
			if err != nil {
				status = "degraded"
				overall = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "catalog-store", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func financeMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
