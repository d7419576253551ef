package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Ledger — GET /v1/buildings/{buildingId}/transactions
// ============================================================

func ledgerQuery(r *http.Request, svc Services) (service.LedgerQuery, error) {
	filter, err := parseFilter(r, svc.Location)
	if err != nil {
		return service.LedgerQuery{}, err
	}
	return service.LedgerQuery{BuildingID: chi.URLParam(r, "buildingId"), Filter: filter}, nil
}

func listTransactionsHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buildings/{buildingId}/transactions")
		defer span.End()

		q, err := ledgerQuery(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("building.id", q.BuildingID))

		ledger, err := svc.Finance.ListTransactions(ctx, q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, ledger)
	}
}

func exportTransactionsHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buildings/{buildingId}/transactions/export")
		defer span.End()

		q, err := ledgerQuery(r, svc)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		f, err := svc.Finance.ExportTransactions(ctx, q, buildingFromQuery(r, q.BuildingID))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("export.id", f.ID), attribute.Int("export.rows", f.Rows))
		writeWorkbook(w, f)
	}
}

// ============================================================
// 3. Bills — POST /v1/bills/pay
// ============================================================

func payBillHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/bills/pay")
		defer span.End()

		var req domain.PayBillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, msgBadRequest)
			return
		}
		if key := r.Header.Get("Idempotency-Key"); key != "" {
			req.IdempotencyKey = key
		}

		resp, err := svc.Finance.PayBill(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// 3b. Expenses — POST /v1/expenses, PUT/DELETE /v1/expenses/{expenseId}
// ============================================================

func registerExpenseHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		req, err := decodeExpense(w, r, svc.MaxUploadBytes)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.Finance.RegisterExpense(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func updateExpenseHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/expenses/{expenseId}")
		defer span.End()

		req, err := decodeExpense(w, r, svc.MaxUploadBytes)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		req.SharedBillID = chi.URLParam(r, "expenseId")

		resp, err := svc.Finance.UpdateExpense(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func deleteExpenseHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/{expenseId}")
		defer span.End()

		resp, err := svc.Finance.DeleteExpense(ctx, r.URL.Query().Get("building_id"), chi.URLParam(r, "expenseId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// decodeExpense reads an expense from a JSON body or a multipart form with
// an optional "attachment" file.
func decodeExpense(w http.ResponseWriter, r *http.Request, maxUpload int64) (*domain.ExpenseRequest, error) {
	badRequest := &domain.ErrValidation{Field: "body", Message: msgBadRequest}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req domain.ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, badRequest
		}
		return &req, nil
	}

	// room for the form fields beside the file
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &domain.ErrValidation{Field: "attachment", Message: "حجم فایل نباید بیشتر از 10 مگابایت باشد."}
		}
		return nil, badRequest
	}

	form := r.MultipartForm.Value
	get := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	req := &domain.ExpenseRequest{
		BuildingID:         get("building_id"),
		ExpenseType:        get("expense_type"),
		ExpenseName:        get("expense_name"),
		TotalAmount:        get("total_amount"),
		Target:             get("target"),
		DistributionMethod: get("distribution_method"),
		Role:               get("role"),
		Description:        get("description"),
		BillDue:            get("bill_due"),
		PaymentMethod:      get("payment_method"),
		BillingDate:        get("billing_date"),
	}

	if raw := get("specific_units"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.SpecificUnits); err != nil {
			req.SpecificUnits = form["specific_units"]
		}
	}
	if raw := get("custom_unit_costs"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.CustomUnitCosts); err != nil {
			return nil, &domain.ErrValidation{Field: "custom_unit_costs", Message: msgBadRequest}
		}
	}
	if raw := get("grace_period_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, &domain.ErrValidation{Field: "grace_period_days", Message: msgBadRequest}
		}
		req.GracePeriodDays = n
	}
	req.AutoTransferToDebt, _ = strconv.ParseBool(get("auto_transfer_to_debt"))

	if files := r.MultipartForm.File["attachment"]; len(files) > 0 {
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return nil, badRequest
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return nil, badRequest
		}
		req.Attachment = &domain.Attachment{Filename: fh.Filename, Content: content}
	}
	return req, nil
}
