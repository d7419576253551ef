// Package client implements the outbound REST adapters: the building-management
// billing backend and the legal-AI service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// BreakerSuccess is the circuit-breaker success predicate shared by the
// backend clients: client errors (4xx) and caller cancellations say nothing
// about the backend's health.
func BreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var ext *domain.ErrExternalService
	return errors.As(err, &ext) && ext.StatusCode >= 400 && ext.StatusCode < 500
}

// request describes one backend call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	header      map[string]string
	// idempotent requests are retried on transient failures.
	idempotent bool
}

// restClient holds the HTTP plumbing shared by the adapters.
type restClient struct {
	httpClient *http.Client
	baseURL    string
	service    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// execute runs r through the circuit breaker and, for idempotent requests,
// retry with backoff. 4xx responses are never retried.
func (c *restClient) execute(ctx context.Context, r request) ([]byte, error) {
	cfg := c.cfg
	if !r.idempotent {
		cfg.MaxRetries = 0
	}

	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, cfg, func() error {
			b, err := c.do(ctx, r)
			if err != nil {
				return err
			}
			body = b
			return nil
		})
		return nil, innerErr
	})
	if err != nil {
		return nil, c.wrap(r, err)
	}
	return body, nil
}

func (c *restClient) wrap(r request, err error) error {
	var ext *domain.ErrExternalService
	switch {
	case errors.As(err, &ext):
		return ext
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: c.service}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: c.service + " " + r.path}
	default:
		return &domain.ErrExternalService{Service: c.service, Err: err}
	}
}

// do performs a single HTTP round trip. Non-2xx responses become
// *domain.ErrExternalService; 4xx ones are marked permanent.
func (c *restClient) do(ctx context.Context, r request) ([]byte, error) {
	target := strings.TrimRight(c.baseURL, "/") + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var reqBody io.Reader
	if r.body != nil {
		reqBody = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, reqBody)
	if err != nil {
		return nil, resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	if caller, ok := domain.CallerFromContext(ctx); ok && caller.Token != "" {
		req.Header.Set("Authorization", "Bearer "+caller.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("service", c.service),
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("backend non-2xx response",
			zap.String("service", c.service),
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Int("status", resp.StatusCode),
		)
		ext := &domain.ErrExternalService{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
			Err:        fmt.Errorf("%s %s returned status %d", r.method, r.path, resp.StatusCode),
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, resilience.Permanent(ext)
		}
		return nil, ext
	}

	c.logger.Debug("backend request OK",
		zap.String("service", c.service),
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
	)
	return body, nil
}

// errorDetail extracts the backend's message from `{"error": ...}` or
// `{"detail": ...}`; anything else yields "".
func errorDetail(body []byte) string {
	var e struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Detail
}

// decodeList accepts either a bare JSON array or an object holding the array under key.
func decodeList[T any](body []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var out []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}
	raw, ok := envelope[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func jsonBody(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	return b, nil
}
