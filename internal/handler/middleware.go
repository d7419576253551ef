package handler

import (
	"net/http"
	"strings"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/observability"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// TokenVerifier turns a bearer token into the caller it identifies.
type TokenVerifier interface {
	Verify(token string) (*domain.Caller, error)
}

// JWTAuthMiddleware validates Bearer tokens and puts the caller into the context.
func JWTAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "توکن احراز هویت ارسال نشده است")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "فرمت توکن نامعتبر است")
				return
			}

			caller, err := verifier.Verify(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := domain.WithCaller(r.Context(), *caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestCounter counts API responses as success or error.
func RequestCounter(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= http.StatusInternalServerError {
				metrics.IncrRequest("error")
				return
			}
			metrics.IncrRequest("success")
		})
	}
}

// callerFrom returns the authenticated caller. JWTAuthMiddleware guarantees one.
func callerFrom(r *http.Request) domain.Caller {
	c, _ := domain.CallerFromContext(r.Context())
	return c
}
