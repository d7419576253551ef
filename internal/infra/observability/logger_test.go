package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerMiddleware_RouteFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(ZapLoggerMiddleware(zap.New(core)))
	r.Get("/v1/buildings/{buildingId}/debt-credit", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/buildings/7/debt-credit", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}

	denied := entries[0]
	if denied.Level != zapcore.WarnLevel {
		t.Errorf("expected warn for 403, got %s", denied.Level)
	}
	fields := denied.ContextMap()
	if fields["route"] != "/v1/buildings/{buildingId}/debt-credit" {
		t.Errorf("unexpected route %v", fields["route"])
	}
	if fields["building_id"] != "7" {
		t.Errorf("expected building_id 7, got %v", fields["building_id"])
	}

	health := entries[1].ContextMap()
	if health["building_id"] != nil {
		t.Errorf("expected no building_id on /healthz, got %v", health["building_id"])
	}
	if health["bytes"] != int64(2) {
		t.Errorf("expected 2 bytes written, got %v", health["bytes"])
	}
}
