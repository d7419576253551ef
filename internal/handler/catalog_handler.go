package handler

import (
	"encoding/json"
	"net/http"

	"github.com/melking/melking-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// 4. Expense types — /v1/expense-types, /v1/categories
// ============================================================

func listExpenseTypesHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := svc.Catalog.ListExpenseTypes(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"expense_types": types})
	}
}

func listCategoriesHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := svc.Catalog.Categories(r.Context())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
	}
}

func addExpenseTypeHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expense-types")
		defer span.End()

		var req domain.ExpenseType
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, msgBadRequest)
			return
		}

		added, err := svc.Catalog.AddExpenseType(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, added)
	}
}
