package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formloop/formloop/internal/models"
	"github.com/formloop/formloop/internal/services"
	pkghttp "github.com/formloop/formloop/pkg/http"
	"github.com/go-chi/chi/v5"
)

// FormServiceInterface defines the form business logic the handler needs
type FormServiceInterface interface {
	CreateForm(ctx context.Context, form *models.Form) (*models.Form, error)
	GetForm(ctx context.Context, id string) (*models.Form, error)
	ListForms(ctx context.Context, formType string) ([]*models.Form, error)
}

// SummaryServiceInterface provides aggregated results for the dashboard
type SummaryServiceInterface interface {
	Summarize(ctx context.Context, formID string) (*services.FormSummary, error)
}

// FormHandler handles form HTTP requests
type FormHandler struct {
	service   FormServiceInterface
	summaries SummaryServiceInterface
}

// NewFormHandler creates a new FormHandler
func NewFormHandler(service FormServiceInterface, summaries SummaryServiceInterface) *FormHandler {
	return &FormHandler{service: service, summaries: summaries}
}

// QuestionRequest represents one question in a form creation request
type QuestionRequest struct {
	ID       string   `json:"id"`
	Type     string   `json:"type" validate:"required,oneof=mcq text"`
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options"`
}

// CreateFormRequest represents the request body for creating a form
type CreateFormRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Questions   []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
	Type        string            `json:"type" validate:"omitempty,oneof=public private"`
}

// CreateForm creates a new feedback form
//
// POST /forms
func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var req CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	form := &models.Form{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
	}
	for _, q := range req.Questions {
		form.Questions = append(form.Questions, models.Question{
			ID:       q.ID,
			Type:     q.Type,
			Question: q.Question,
			Options:  q.Options,
		})
	}

	created, err := h.service.CreateForm(r.Context(), form)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Failed to create form")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, created)
}

// GetForm retrieves a form by ID
//
// GET /forms/{id}
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "id")
	if formID == "" {
		pkghttp.WriteBadRequest(w, "Form ID is required")
		return
	}

	form, err := h.service.GetForm(r.Context(), formID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Form not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to fetch form")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, form)
}

// ListForms returns forms, optionally filtered by type
//
// GET /forms?type=public|private
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	formType := r.URL.Query().Get("type")

	forms, err := h.service.ListForms(r.Context(), formType)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Failed to fetch forms")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, forms)
}

// GetSummary returns aggregated response counts for a form
//
// GET /forms/{id}/summary
func (h *FormHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "id")
	if formID == "" {
		pkghttp.WriteBadRequest(w, "Form ID is required")
		return
	}

	summary, err := h.summaries.Summarize(r.Context(), formID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Form not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to summarize responses")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, summary)
}
