package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/formloop/formloop/internal/models"
	"github.com/stretchr/testify/assert"
)

// MockResponseRepository implements ResponseRepository for testing
type MockResponseRepository struct {
	CreateFunc     func(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error)
	ListByFormFunc func(ctx context.Context, formID string) ([]*models.FormResponse, error)
}

func (m *MockResponseRepository) Create(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error) {
	return m.CreateFunc(ctx, formID, answers)
}

func (m *MockResponseRepository) ListByForm(ctx context.Context, formID string) ([]*models.FormResponse, error) {
	return m.ListByFormFunc(ctx, formID)
}

func TestSubmitResponse_UnknownFormRejected(t *testing.T) {
	mockForms := &MockFormGetter{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Form, error) {
			return nil, models.ErrNotFound
		},
	}

	svc := NewResponseService(&MockResponseRepository{}, mockForms, slog.Default())

	_, err := svc.SubmitResponse(context.Background(), "missing", map[string]string{"q1": "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSubmitResponse_RequiresAnswers(t *testing.T) {
	svc := NewResponseService(&MockResponseRepository{}, &MockFormGetter{}, slog.Default())

	_, err := svc.SubmitResponse(context.Background(), "form-1", nil)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestSummarize_CountsMCQAndCollectsText(t *testing.T) {
	form := &models.Form{
		ID:    "form-1",
		Title: "Course Feedback",
		Type:  models.FormTypePublic,
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionTypeMCQ, Question: "Difficulty?", Options: []string{"Easy", "Hard"}},
			{ID: "q2", Type: models.QuestionTypeText, Question: "Anything else?"},
		},
	}

	mockForms := &MockFormGetter{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Form, error) {
			return form, nil
		},
	}

	mockResponses := &MockResponseRepository{
		ListByFormFunc: func(ctx context.Context, formID string) ([]*models.FormResponse, error) {
			return []*models.FormResponse{
				{ID: "r1", FormID: formID, Answers: map[string]string{"q1": "Hard", "q2": "More examples"}},
				{ID: "r2", FormID: formID, Answers: map[string]string{"q1": "Hard"}},
				{ID: "r3", FormID: formID, Answers: map[string]string{"q1": "Easy", "q2": ""}},
			}, nil
		},
	}

	svc := NewResponseService(mockResponses, mockForms, slog.Default())

	summary, err := svc.Summarize(context.Background(), "form-1")

	assert.NoError(t, err)
	assert.Equal(t, 3, summary.ResponseCount)
	assert.Len(t, summary.Questions, 2)

	mcq := summary.Questions[0]
	assert.Equal(t, 2, mcq.Counts["Hard"])
	assert.Equal(t, 1, mcq.Counts["Easy"])

	text := summary.Questions[1]
	assert.Equal(t, []string{"More examples"}, text.Answers)
}

func TestSummarize_NoResponses(t *testing.T) {
	form := &models.Form{
		ID: "form-1",
		Questions: []models.Question{
			{ID: "q1", Type: models.QuestionTypeMCQ, Question: "Difficulty?", Options: []string{"Easy", "Hard"}},
		},
	}

	mockForms := &MockFormGetter{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Form, error) {
			return form, nil
		},
	}

	mockResponses := &MockResponseRepository{
		ListByFormFunc: func(ctx context.Context, formID string) ([]*models.FormResponse, error) {
			return []*models.FormResponse{}, nil
		},
	}

	svc := NewResponseService(mockResponses, mockForms, slog.Default())

	summary, err := svc.Summarize(context.Background(), "form-1")

	assert.NoError(t, err)
	assert.Equal(t, 0, summary.ResponseCount)
	// Options are pre-seeded so the dashboard shows zero counts
	assert.Equal(t, 0, summary.Questions[0].Counts["Easy"])
	assert.Equal(t, 0, summary.Questions[0].Counts["Hard"])
}
