package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/formloop/formloop/internal/models"
	"github.com/google/uuid"
)

// FormRepository defines the form store operations the service needs
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) (*models.Form, error)
	GetByID(ctx context.Context, id string) (*models.Form, error)
	List(ctx context.Context, formType string) ([]*models.Form, error)
}

// FormService handles form business logic
type FormService struct {
	forms  FormRepository
	logger *slog.Logger
}

// NewFormService creates a new FormService
func NewFormService(forms FormRepository, logger *slog.Logger) *FormService {
	return &FormService{forms: forms, logger: logger}
}

// CreateForm validates and persists a new form. Question IDs are assigned
// here when the builder did not supply them.
func (s *FormService) CreateForm(ctx context.Context, form *models.Form) (*models.Form, error) {
	if form.Title == "" || form.Description == "" || len(form.Questions) == 0 {
		return nil, models.ErrBadRequest
	}

	if form.Type == "" {
		form.Type = models.FormTypePublic
	}
	if form.Type != models.FormTypePublic && form.Type != models.FormTypePrivate {
		return nil, fmt.Errorf("%w: unknown form type %q", models.ErrBadRequest, form.Type)
	}

	for i := range form.Questions {
		q := &form.Questions[i]
		if q.Question == "" {
			return nil, fmt.Errorf("%w: question %d has no prompt", models.ErrBadRequest, i+1)
		}
		switch q.Type {
		case models.QuestionTypeMCQ:
			if len(q.Options) < 2 {
				return nil, fmt.Errorf("%w: mcq question %d needs at least 2 options", models.ErrBadRequest, i+1)
			}
		case models.QuestionTypeText:
			q.Options = nil
		default:
			return nil, fmt.Errorf("%w: unknown question type %q", models.ErrBadRequest, q.Type)
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
	}

	created, err := s.forms.Create(ctx, form)
	if err != nil {
		return nil, err
	}

	s.logger.Info("form created",
		slog.String("form_id", created.ID),
		slog.String("type", created.Type),
		slog.Int("questions", len(created.Questions)))

	return created, nil
}

// GetForm retrieves a form by ID
func (s *FormService) GetForm(ctx context.Context, id string) (*models.Form, error) {
	if id == "" {
		return nil, models.ErrBadRequest
	}
	return s.forms.GetByID(ctx, id)
}

// ListForms returns forms, optionally filtered by visibility type
func (s *FormService) ListForms(ctx context.Context, formType string) ([]*models.Form, error) {
	if formType != "" && formType != models.FormTypePublic && formType != models.FormTypePrivate {
		return nil, fmt.Errorf("%w: unknown form type %q", models.ErrBadRequest, formType)
	}
	return s.forms.List(ctx, formType)
}
