package services

import (
	"context"
	"log/slog"

	"github.com/formloop/formloop/internal/models"
)

// ResponseRepository defines the response store operations the service needs
type ResponseRepository interface {
	Create(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error)
	ListByForm(ctx context.Context, formID string) ([]*models.FormResponse, error)
}

// QuestionSummary tallies answers for one question. Counts carries
// occurrences per distinct answer; for free-text questions the raw answers
// are listed instead.
type QuestionSummary struct {
	QuestionID string         `json:"question_id"`
	Question   string         `json:"question"`
	Type       string         `json:"type"`
	Counts     map[string]int `json:"counts,omitempty"`
	Answers    []string       `json:"answers,omitempty"`
}

// FormSummary aggregates all responses for a form
type FormSummary struct {
	FormID        string            `json:"form_id"`
	ResponseCount int               `json:"response_count"`
	Questions     []QuestionSummary `json:"questions"`
}

// ResponseService handles anonymous response collection and aggregation
type ResponseService struct {
	responses ResponseRepository
	forms     FormGetter
	logger    *slog.Logger
}

// NewResponseService creates a new ResponseService
func NewResponseService(responses ResponseRepository, forms FormGetter, logger *slog.Logger) *ResponseService {
	return &ResponseService{responses: responses, forms: forms, logger: logger}
}

// SubmitResponse stores an anonymous submission against an existing form
func (s *ResponseService) SubmitResponse(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error) {
	if formID == "" || len(answers) == 0 {
		return nil, models.ErrBadRequest
	}

	if _, err := s.forms.GetByID(ctx, formID); err != nil {
		return nil, err
	}

	resp, err := s.responses.Create(ctx, formID, answers)
	if err != nil {
		return nil, err
	}

	s.logger.Info("response submitted", slog.String("form_id", formID))

	return resp, nil
}

// ListResponses returns responses, optionally scoped to one form
func (s *ResponseService) ListResponses(ctx context.Context, formID string) ([]*models.FormResponse, error) {
	return s.responses.ListByForm(ctx, formID)
}

// Summarize counts answers per question across all of a form's responses
func (s *ResponseService) Summarize(ctx context.Context, formID string) (*FormSummary, error) {
	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responses.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	summary := &FormSummary{
		FormID:        form.ID,
		ResponseCount: len(responses),
	}

	for _, q := range form.Questions {
		qs := QuestionSummary{
			QuestionID: q.ID,
			Question:   q.Question,
			Type:       q.Type,
		}

		if q.Type == models.QuestionTypeMCQ {
			qs.Counts = make(map[string]int)
			for _, opt := range q.Options {
				qs.Counts[opt] = 0
			}
		}

		for _, resp := range responses {
			answer, ok := resp.Answers[q.ID]
			if !ok || answer == "" {
				continue
			}
			if q.Type == models.QuestionTypeMCQ {
				qs.Counts[answer]++
			} else {
				qs.Answers = append(qs.Answers, answer)
			}
		}

		summary.Questions = append(summary.Questions, qs)
	}

	return summary, nil
}
