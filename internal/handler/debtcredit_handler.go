package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 2. Debt / credit — /v1/buildings/{buildingId}/debt-credit
// ============================================================

func debtCreditHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buildings/{buildingId}/debt-credit")
		defer span.End()

		buildingID := chi.URLParam(r, "buildingId")
		res, err := svc.DebtCredit.Aggregate(ctx, callerFrom(r), buildingID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Bool("show_only_own_unit", res.ShowOnlyOwnUnit))
		writeJSON(w, http.StatusOK, res)
	}
}

// debtCreditResetHandler is called when the client closes the view; the next
// open fetches again.
func debtCreditResetHandler(svc Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.DebtCredit.Reset(callerFrom(r), chi.URLParam(r, "buildingId"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func exportDebtCreditHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buildings/{buildingId}/debt-credit/export")
		defer span.End()

		buildingID := chi.URLParam(r, "buildingId")
		building := buildingFromQuery(r, buildingID)
		if building.Title == "" {
			building = nil
		}

		f, err := svc.DebtCredit.ExportUnits(ctx, callerFrom(r), buildingID, building)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("export.id", f.ID), attribute.Int("export.rows", f.Rows))
		writeWorkbook(w, f)
	}
}

func getVisibilityHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/buildings/{buildingId}/debt-credit/visibility")
		defer span.End()

		v, err := svc.DebtCredit.Visibility(ctx, chi.URLParam(r, "buildingId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

type toggleVisibilityRequest struct {
	ShowToResidents *bool `json:"show_to_residents"`
}

func toggleVisibilityHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/buildings/{buildingId}/debt-credit/visibility")
		defer span.End()

		var req toggleVisibilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ShowToResidents == nil {
			writeError(w, http.StatusBadRequest, msgBadRequest)
			return
		}

		v, err := svc.DebtCredit.ToggleVisibility(ctx, callerFrom(r), chi.URLParam(r, "buildingId"), *req.ShowToResidents)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
