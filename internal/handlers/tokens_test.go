package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/formloop/formloop/internal/models"
	"github.com/formloop/formloop/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestGenerateTokens_Success(t *testing.T) {
	mockService := &MockAccessTokenService{
		IssueTokensFunc: func(ctx context.Context, formID, formTitle string, emails []string) (*services.IssueReport, error) {
			assert.Equal(t, "form-1", formID)
			assert.Equal(t, "Course X", formTitle)
			assert.Equal(t, []string{"a@x.com", "b@x.com"}, emails)

			return &services.IssueReport{
				Total:      2,
				Successful: 2,
				Failed:     0,
				Outcomes: []services.IssueOutcome{
					{Email: "a@x.com", Token: "aB3dE5fG7hJ9", Delivered: true},
					{Email: "b@x.com", Token: "kL2mN4pQ6rS8", Delivered: true},
				},
			}, nil
		},
	}

	handler := NewTokenHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/forms/generate-tokens", GenerateTokensRequest{
		FormID:    "form-1",
		FormTitle: "Course X",
		Emails:    []string{"a@x.com", "b@x.com"},
	})
	w := httptest.NewRecorder()
	handler.GenerateTokens(w, req)

	var resp GenerateTokensResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Successful)
	assert.Equal(t, 0, resp.Failed)
	assert.Len(t, resp.Results, 2)
	assert.Empty(t, resp.Errors)
	assert.NotEqual(t, resp.Results[0].Token, resp.Results[1].Token)
	for _, result := range resp.Results {
		assert.Len(t, result.Token, 12)
		assert.True(t, result.Sent)
	}
}

func TestGenerateTokens_PartialFailure(t *testing.T) {
	mockService := &MockAccessTokenService{
		IssueTokensFunc: func(ctx context.Context, formID, formTitle string, emails []string) (*services.IssueReport, error) {
			return &services.IssueReport{
				Total:      3,
				Successful: 2,
				Failed:     2,
				Outcomes: []services.IssueOutcome{
					{Email: "a@x.com", Token: "aB3dE5fG7hJ9", Delivered: true},
					{Email: "b@x.com", Token: "kL2mN4pQ6rS8", Delivered: false, Err: models.ErrEmailSendFailed},
					{Email: "c@x.com", Err: models.ErrTokenGenerationExhausted},
				},
			}, nil
		},
	}

	handler := NewTokenHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/forms/generate-tokens", GenerateTokensRequest{
		FormID: "form-1",
		Emails: []string{"a@x.com", "b@x.com", "c@x.com"},
	})
	w := httptest.NewRecorder()
	handler.GenerateTokens(w, req)

	var resp GenerateTokensResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)

	// Batch reports HTTP success; individual outcomes ride in the lists
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Successful)
	assert.Equal(t, 2, resp.Failed)

	// b's token persisted: it appears in results (sent=false) and errors
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, "b@x.com", resp.Results[1].Email)
	assert.False(t, resp.Results[1].Sent)

	assert.Len(t, resp.Errors, 2)
	assert.Equal(t, TokenError{Email: "b@x.com", Error: "email sending failed"}, resp.Errors[0])
	assert.Equal(t, TokenError{Email: "c@x.com", Error: "token generation exhausted"}, resp.Errors[1])
}

func TestGenerateTokens_EmptyEmails(t *testing.T) {
	handler := NewTokenHandler(&MockAccessTokenService{})

	req := NewTestRequest(t, http.MethodPost, "/forms/generate-tokens", GenerateTokensRequest{
		FormID: "form-1",
		Emails: []string{},
	})
	w := httptest.NewRecorder()
	handler.GenerateTokens(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestGenerateTokens_InvalidEmailSyntax(t *testing.T) {
	handler := NewTokenHandler(&MockAccessTokenService{})

	req := NewTestRequest(t, http.MethodPost, "/forms/generate-tokens", GenerateTokensRequest{
		FormID: "form-1",
		Emails: []string{"not-an-email"},
	})
	w := httptest.NewRecorder()
	handler.GenerateTokens(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestGenerateTokens_FormNotFound(t *testing.T) {
	mockService := &MockAccessTokenService{
		IssueTokensFunc: func(ctx context.Context, formID, formTitle string, emails []string) (*services.IssueReport, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := NewTokenHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/forms/generate-tokens", GenerateTokensRequest{
		FormID: "missing",
		Emails: []string{"a@x.com"},
	})
	w := httptest.NewRecorder()
	handler.GenerateTokens(w, req)

	AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestValidateToken_Success(t *testing.T) {
	mockService := &MockAccessTokenService{
		ValidateFunc: func(ctx context.Context, formID, token string) error {
			assert.Equal(t, "form-1", formID)
			assert.Equal(t, "aB3dE5fG7hJ9", token)
			return nil
		},
	}
	handler := NewTokenHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/forms/validate-token", ValidateTokenRequest{
		FormID: "form-1",
		Token:  "aB3dE5fG7hJ9",
	})
	w := httptest.NewRecorder()
	handler.ValidateToken(w, req)

	var resp ValidateTokenResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	mockService := &MockAccessTokenService{
		ValidateFunc: func(ctx context.Context, formID, token string) error {
			return models.ErrInvalidToken
		},
	}
	handler := NewTokenHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/forms/validate-token", ValidateTokenRequest{
		FormID: "form-1",
		Token:  "not-a-real-token",
	})
	w := httptest.NewRecorder()
	handler.ValidateToken(w, req)

	AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
}

func TestValidateToken_AlreadyUsed(t *testing.T) {
	mockService := &MockAccessTokenService{
		ValidateFunc: func(ctx context.Context, formID, token string) error {
			return models.ErrTokenAlreadyUsed
		},
	}
	handler := NewTokenHandler(mockService)

	req := NewTestRequest(t, http.MethodPost, "/forms/validate-token", ValidateTokenRequest{
		FormID: "form-1",
		Token:  "aB3dE5fG7hJ9",
	})
	w := httptest.NewRecorder()
	handler.ValidateToken(w, req)

	AssertErrorResponse(t, w, http.StatusForbidden, "forbidden")
}

func TestValidateToken_MissingFields(t *testing.T) {
	handler := NewTokenHandler(&MockAccessTokenService{})

	req := NewTestRequest(t, http.MethodPost, "/forms/validate-token", ValidateTokenRequest{
		FormID: "form-1",
	})
	w := httptest.NewRecorder()
	handler.ValidateToken(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestListTokens_Success(t *testing.T) {
	usedAt := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	mockService := &MockAccessTokenService{
		ListTokensFunc: func(ctx context.Context, formID string) ([]*models.AccessToken, error) {
			return []*models.AccessToken{
				{ID: "t1", FormID: formID, Email: "a@x.com", Token: "aB3dE5fG7hJ9", Used: true, UsedAt: &usedAt, CreatedAt: usedAt.Add(-time.Hour)},
				{ID: "t2", FormID: formID, Email: "b@x.com", Token: "kL2mN4pQ6rS8", CreatedAt: usedAt.Add(-time.Hour)},
			}, nil
		},
	}
	handler := NewTokenHandler(mockService)

	req := WithURLParam(NewTestRequest(t, http.MethodGet, "/forms/form-1/tokens", nil), "id", "form-1")
	w := httptest.NewRecorder()
	handler.ListTokens(w, req)

	var entries []TokenListEntry
	AssertJSONResponse(t, w, http.StatusOK, &entries)

	assert.Len(t, entries, 2)
	assert.True(t, entries[0].Used)
	assert.NotEmpty(t, entries[0].UsedAt)
	assert.False(t, entries[1].Used)
	assert.Empty(t, entries[1].UsedAt)
}
