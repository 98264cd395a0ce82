package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formloop/formloop/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSubmitResponse_Success(t *testing.T) {
	mockService := &MockResponseService{
		SubmitResponseFunc: func(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error) {
			assert.Equal(t, "form-1", formID)
			assert.Equal(t, "Just Right", answers["q1"])
			return &models.FormResponse{ID: "resp-1", FormID: formID, Answers: answers}, nil
		},
	}
	handler := NewResponseHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/responses", SubmitResponseRequest{
		FormID:  "form-1",
		Answers: map[string]string{"q1": "Just Right"},
	})
	w := httptest.NewRecorder()
	handler.SubmitResponse(w, req)

	var resp models.FormResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "resp-1", resp.ID)
}

func TestSubmitResponse_UnknownForm(t *testing.T) {
	mockService := &MockResponseService{
		SubmitResponseFunc: func(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := NewResponseHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/responses", SubmitResponseRequest{
		FormID:  "missing",
		Answers: map[string]string{"q1": "x"},
	})
	w := httptest.NewRecorder()
	handler.SubmitResponse(w, req)

	AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestSubmitResponse_EmptyAnswers(t *testing.T) {
	handler := NewResponseHandler(&MockResponseService{})

	req := NewTestRequest(t, http.MethodPost, "/responses", SubmitResponseRequest{
		FormID: "form-1",
	})
	w := httptest.NewRecorder()
	handler.SubmitResponse(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestListResponses_ByForm(t *testing.T) {
	mockService := &MockResponseService{
		ListResponsesFunc: func(ctx context.Context, formID string) ([]*models.FormResponse, error) {
			assert.Equal(t, "form-1", formID)
			return []*models.FormResponse{
				{ID: "resp-1", FormID: formID},
				{ID: "resp-2", FormID: formID},
			}, nil
		},
	}
	handler := NewResponseHandler(mockService)

	req := NewTestRequest(t, http.MethodGet, "/responses?form_id=form-1", nil)
	w := httptest.NewRecorder()
	handler.ListResponses(w, req)

	var responses []*models.FormResponse
	AssertJSONResponse(t, w, http.StatusOK, &responses)
	assert.Len(t, responses, 2)
}
