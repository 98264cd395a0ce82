package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formloop/formloop/internal/models"
	"github.com/formloop/formloop/internal/services"
	pkghttp "github.com/formloop/formloop/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithURLParam injects a chi route parameter into the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAccessTokenService implements AccessTokenServiceInterface for testing
type MockAccessTokenService struct {
	IssueTokensFunc func(ctx context.Context, formID, formTitle string, emails []string) (*services.IssueReport, error)
	ValidateFunc    func(ctx context.Context, formID, token string) error
	ListTokensFunc  func(ctx context.Context, formID string) ([]*models.AccessToken, error)
}

func (m *MockAccessTokenService) IssueTokens(ctx context.Context, formID, formTitle string, emails []string) (*services.IssueReport, error) {
	return m.IssueTokensFunc(ctx, formID, formTitle, emails)
}

func (m *MockAccessTokenService) Validate(ctx context.Context, formID, token string) error {
	return m.ValidateFunc(ctx, formID, token)
}

func (m *MockAccessTokenService) ListTokens(ctx context.Context, formID string) ([]*models.AccessToken, error) {
	return m.ListTokensFunc(ctx, formID)
}

// MockFormService implements FormServiceInterface for testing
type MockFormService struct {
	CreateFormFunc func(ctx context.Context, form *models.Form) (*models.Form, error)
	GetFormFunc    func(ctx context.Context, id string) (*models.Form, error)
	ListFormsFunc  func(ctx context.Context, formType string) ([]*models.Form, error)
}

func (m *MockFormService) CreateForm(ctx context.Context, form *models.Form) (*models.Form, error) {
	return m.CreateFormFunc(ctx, form)
}

func (m *MockFormService) GetForm(ctx context.Context, id string) (*models.Form, error) {
	return m.GetFormFunc(ctx, id)
}

func (m *MockFormService) ListForms(ctx context.Context, formType string) ([]*models.Form, error) {
	return m.ListFormsFunc(ctx, formType)
}

// MockSummaryService implements SummaryServiceInterface for testing
type MockSummaryService struct {
	SummarizeFunc func(ctx context.Context, formID string) (*services.FormSummary, error)
}

func (m *MockSummaryService) Summarize(ctx context.Context, formID string) (*services.FormSummary, error) {
	return m.SummarizeFunc(ctx, formID)
}

// MockResponseService implements ResponseServiceInterface for testing
type MockResponseService struct {
	SubmitResponseFunc func(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error)
	ListResponsesFunc  func(ctx context.Context, formID string) ([]*models.FormResponse, error)
}

func (m *MockResponseService) SubmitResponse(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error) {
	return m.SubmitResponseFunc(ctx, formID, answers)
}

func (m *MockResponseService) ListResponses(ctx context.Context, formID string) ([]*models.FormResponse, error) {
	return m.ListResponsesFunc(ctx, formID)
}
