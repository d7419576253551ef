package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const legalAIService = "legal_ai"

// LegalAIClient asks the legal-AI service building-law questions.
// It implements port.LegalAdvisor.
type LegalAIClient struct {
	rest *restClient
}

// NewLegalAIClient creates a LegalAIClient.
func NewLegalAIClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *LegalAIClient {
	return &LegalAIClient{rest: &restClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		service:    legalAIService,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}}
}

type legalAnswer struct {
	Success       bool `json:"success"`
	LegalQuestion *struct {
		Response string `json:"response"`
	} `json:"legalQuestion"`
}

// Ask returns the service's answer. An unsuccessful or empty reply is an error.
func (c *LegalAIClient) Ask(ctx context.Context, question string) (string, error) {
	ctx, span := tracer.Start(ctx, "LegalAIClient.Ask")
	defer span.End()
	span.SetAttributes(attribute.Int("question.length", len([]rune(question))))

	payload, err := jsonBody(map[string]string{"question": question})
	if err != nil {
		return "", err
	}
	body, err := c.rest.execute(ctx, request{
		method:      http.MethodPost,
		path:        "/legal-ai/ask/",
		body:        payload,
		contentType: "application/json",
	})
	if err != nil {
		return "", err
	}

	var ans legalAnswer
	if err := json.Unmarshal(body, &ans); err != nil {
		return "", &domain.ErrExternalService{Service: legalAIService, Err: fmt.Errorf("decoding answer: %w", err)}
	}
	if !ans.Success || ans.LegalQuestion == nil || ans.LegalQuestion.Response == "" {
		return "", &domain.ErrExternalService{Service: legalAIService, Err: fmt.Errorf("no answer in response")}
	}
	return ans.LegalQuestion.Response, nil
}
