package service

import (
	"context"
	"strings"
	"time"

	"github.com/melking/melking-bfa-go/internal/domain"
	"github.com/melking/melking-bfa-go/internal/infra/observability"
	"github.com/melking/melking-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FallbackLegalAI labels canned legal answers in the fallback counter.
const FallbackLegalAI = "legal_ai"

const msgQuestionRequired = "لطفاً سوال خود را وارد کنید."

// LegalAnswer is one assistant reply.
type LegalAnswer struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Topic     string    `json:"topic,omitempty"`
	Fallback  bool      `json:"fallback"`
	Timestamp time.Time `json:"timestamp"`
}

// LegalService answers building-law questions through the legal assistant,
// falling back to canned answers when it is unavailable.
type LegalService struct {
	advisor port.LegalAdvisor
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewLegalService creates the legal question service.
func NewLegalService(advisor port.LegalAdvisor, metrics *observability.Metrics, logger *zap.Logger) *LegalService {
	return &LegalService{advisor: advisor, metrics: metrics, logger: logger, now: time.Now}
}

// Ask answers question. Any advisor failure yields a canned answer with
// Fallback set instead of an error.
func (s *LegalService) Ask(ctx context.Context, question string) (*LegalAnswer, error) {
	ctx, span := tracer.Start(ctx, "LegalService.Ask")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &domain.ErrValidation{Field: "question", Message: msgQuestionRequired}
	}

	out := &LegalAnswer{
		ID:        uuid.NewString(),
		Question:  question,
		Timestamp: s.now(),
	}

	answer, err := s.advisor.Ask(ctx, question)
	if err == nil && strings.TrimSpace(answer) != "" {
		out.Answer = answer
		span.SetAttributes(attribute.Bool("fallback", false))
		return out, nil
	}

	s.logger.Warn("legal assistant unavailable, using canned answer", zap.Error(err))
	s.metrics.IncrFallback(FallbackLegalAI)
	out.Topic, out.Answer = CannedAnswer(question)
	out.Fallback = true
	span.SetAttributes(attribute.Bool("fallback", true), attribute.String("topic", out.Topic))
	return out, nil
}

// CannedAnswer picks the canned answer for question by keyword.
func CannedAnswer(question string) (topic, answer string) {
	q := strings.ToLower(question)
	for _, t := range legalTopics {
		for _, k := range t.keywords {
			if strings.Contains(q, k) {
				return t.topic, t.answer
			}
		}
	}
	return "default", answerDefault
}
