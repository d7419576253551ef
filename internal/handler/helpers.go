package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/export"
	"github.com/melking/melking-bfa-go/internal/finance"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeWorkbook sends f as a download. The Persian filename goes in the
// RFC 5987 form; the plain form carries an ASCII stand-in.
func writeWorkbook(w http.ResponseWriter, f *export.File) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(
		"attachment; filename=%q; filename*=UTF-8''%s", "export-"+f.ID+".xlsx", url.PathEscape(f.Name),
	))
	w.Header().Set("X-Export-ID", f.ID)
	w.WriteHeader(http.StatusOK)
	w.Write(f.Content)
}

// User-facing messages.
const (
	msgBadRequest     = "درخواست نامعتبر است"
	msgForbidden      = "شما به این بخش دسترسی ندارید"
	msgNoOwnUnit      = "واحدی برای شما یافت نشد"
	msgNotFound       = "موردی یافت نشد"
	msgNothingExport  = "داده‌ای برای خروجی وجود ندارد"
	msgWorkbook       = "خطا در ایجاد فایل اکسل"
	msgUnavailable    = "سرویس موقتاً در دسترس نیست، لطفاً بعداً تلاش کنید"
	msgTimeout        = "زمان پاسخگویی سرور به پایان رسید"
	msgServerComm     = "خطا در ارتباط با سرور"
	msgInternal       = "خطای داخلی سرور"
)

// handleServiceError maps domain errors to HTTP responses with Persian messages.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var noOwnUnit *domain.ErrNoOwnUnit
	var notFound *domain.ErrNotFound
	var conflict *domain.ErrConflict
	var nothing *domain.ErrNothingToExport
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("field", validation.Field), zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("action", forbidden.Action))
		writeError(w, http.StatusForbidden, msgForbidden)
	case errors.As(err, &noOwnUnit):
		logger.Info("no own unit", zap.String("building_id", noOwnUnit.BuildingID))
		writeError(w, http.StatusNotFound, msgNoOwnUnit)
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, msgNotFound)
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, conflict.Message)
	case errors.As(err, &nothing):
		writeError(w, http.StatusUnprocessableEntity, msgNothingExport)
	case errors.Is(err, export.ErrWorkbook):
		logger.Error("workbook failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgWorkbook)
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, msgTimeout)
	case errors.As(err, &external):
		msg := msgServerComm
		if external.Detail != "" {
			msg = external.Detail
		}
		if external.StatusCode >= 400 && external.StatusCode < 500 {
			logger.Warn("backend rejected request", zap.Int("status", external.StatusCode), zap.Error(err))
			writeError(w, external.StatusCode, msg)
			return
		}
		logger.Error("backend failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, msg)
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// parseFilter reads the ledger filter from the query string.
func parseFilter(r *http.Request, loc *time.Location) (domain.FilterSpec, error) {
	return finance.ParseFilter(r.URL.Query().Get, loc)
}

// buildingFromQuery names the building for export filenames.
func buildingFromQuery(r *http.Request, buildingID string) *domain.Building {
	return &domain.Building{
		ID:    domain.FlexString(buildingID),
		Title: r.URL.Query().Get("building_title"),
	}
}
