package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ============================================================
// 5. Legal assistant — POST /v1/legal-ai/ask
// ============================================================

type legalAskRequest struct {
	Question string `json:"question"`
}

func legalAskHandler(svc Services, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/legal-ai/ask")
		defer span.End()

		var req legalAskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, msgBadRequest)
			return
		}

		ans, err := svc.Legal.Ask(ctx, req.Question)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, ans)
	}
}
