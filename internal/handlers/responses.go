package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formloop/formloop/internal/models"
	pkghttp "github.com/formloop/formloop/pkg/http"
)

// ResponseServiceInterface defines the response business logic the handler needs
type ResponseServiceInterface interface {
	SubmitResponse(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error)
	ListResponses(ctx context.Context, formID string) ([]*models.FormResponse, error)
}

// ResponseHandler handles form response HTTP requests
type ResponseHandler struct {
	service ResponseServiceInterface
}

// NewResponseHandler creates a new ResponseHandler
func NewResponseHandler(service ResponseServiceInterface) *ResponseHandler {
	return &ResponseHandler{service: service}
}

// SubmitResponseRequest represents the request body for an anonymous submission
type SubmitResponseRequest struct {
	FormID  string            `json:"form_id" validate:"required"`
	Answers map[string]string `json:"answers" validate:"required,min=1"`
}

// SubmitResponse stores an anonymous form response
//
// POST /responses
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req SubmitResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.SubmitResponse(r.Context(), req.FormID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Form not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "form_id and answers are required")
		default:
			pkghttp.WriteInternalError(w, "Failed to submit response")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, resp)
}

// ListResponses returns responses, optionally filtered by form
//
// GET /responses?form_id=
func (h *ResponseHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	formID := r.URL.Query().Get("form_id")

	responses, err := h.service.ListResponses(r.Context(), formID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch responses")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, responses)
}
