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

// AccessTokenServiceInterface defines the token workflows the handler needs
type AccessTokenServiceInterface interface {
	IssueTokens(ctx context.Context, formID, formTitle string, emails []string) (*services.IssueReport, error)
	Validate(ctx context.Context, formID, token string) error
	ListTokens(ctx context.Context, formID string) ([]*models.AccessToken, error)
}

// TokenHandler handles access token HTTP requests
type TokenHandler struct {
	service AccessTokenServiceInterface
}

// NewTokenHandler creates a new TokenHandler
func NewTokenHandler(service AccessTokenServiceInterface) *TokenHandler {
	return &TokenHandler{service: service}
}

// Request/Response DTOs

// GenerateTokensRequest represents the request body for batch token issuance
type GenerateTokensRequest struct {
	FormID    string   `json:"form_id" validate:"required"`
	FormTitle string   `json:"form_title"`
	Emails    []string `json:"emails" validate:"required,min=1,dive,required,email"`
}

// TokenResult represents one issued token in the response. Sent is false
// when the token was persisted but delivery failed; the token is still
// redeemable.
type TokenResult struct {
	Email string `json:"email"`
	Token string `json:"token"`
	Sent  bool   `json:"sent"`
}

// TokenError represents one failed email within a batch
type TokenError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// GenerateTokensResponse represents the aggregate outcome of an issuance
// batch. The request succeeds as a whole even when individual emails fail;
// callers must inspect results and errors.
type GenerateTokensResponse struct {
	Success    bool          `json:"success"`
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []TokenResult `json:"results"`
	Errors     []TokenError  `json:"errors,omitempty"`
}

// ValidateTokenRequest represents the request body for token redemption
type ValidateTokenRequest struct {
	FormID string `json:"form_id" validate:"required"`
	Token  string `json:"token" validate:"required"`
}

// ValidateTokenResponse represents a successful redemption
type ValidateTokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TokenListEntry represents one issued token in the admin listing. The raw
// token value is included so operators can resend tokens that failed to
// deliver.
type TokenListEntry struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	Used      bool   `json:"used"`
	UsedAt    string `json:"used_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// GenerateTokens issues access tokens for a batch of emails
//
// POST /forms/generate-tokens
func (h *TokenHandler) GenerateTokens(w http.ResponseWriter, r *http.Request) {
	var req GenerateTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	report, err := h.service.IssueTokens(r.Context(), req.FormID, req.FormTitle, req.Emails)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Form not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Failed to generate access tokens")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, issueReportToResponse(report))
}

// issueReportToResponse maps per-email outcomes to the wire shape: issued
// tokens become result entries, failures become error entries, and an email
// whose token persisted but failed to send appears in both.
func issueReportToResponse(report *services.IssueReport) GenerateTokensResponse {
	resp := GenerateTokensResponse{
		Success:    true,
		Total:      report.Total,
		Successful: report.Successful,
		Failed:     report.Failed,
		Results:    make([]TokenResult, 0, len(report.Outcomes)),
	}

	for _, outcome := range report.Outcomes {
		if outcome.Issued() {
			resp.Results = append(resp.Results, TokenResult{
				Email: outcome.Email,
				Token: outcome.Token,
				Sent:  outcome.Delivered,
			})
		}
		if outcome.Err != nil {
			resp.Errors = append(resp.Errors, TokenError{
				Email: outcome.Email,
				Error: outcomeErrorMessage(outcome.Err),
			})
		}
	}

	return resp
}

func outcomeErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrTokenGenerationExhausted):
		return "token generation exhausted"
	case errors.Is(err, models.ErrEmailSendFailed):
		return "email sending failed"
	default:
		return "token issuance failed"
	}
}

// ValidateToken redeems an access token for a private form. Not-found and
// already-used are distinct statuses so the client can show the right
// message.
//
// POST /forms/validate-token
func (h *TokenHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid JSON body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Validate(r.Context(), req.FormID, req.Token); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidToken):
			pkghttp.WriteNotFound(w, "Invalid access token")
		case errors.Is(err, models.ErrTokenAlreadyUsed):
			pkghttp.WriteForbidden(w, "This access token has already been used")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "form_id and token are required")
		default:
			pkghttp.WriteInternalError(w, "Failed to validate access token")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ValidateTokenResponse{
		Success: true,
		Message: "Access granted",
	})
}

// ListTokens returns the tokens issued for a form
//
// GET /forms/{id}/tokens
func (h *TokenHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "id")
	if formID == "" {
		pkghttp.WriteBadRequest(w, "Form ID is required")
		return
	}

	tokens, err := h.service.ListTokens(r.Context(), formID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Form not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to list access tokens")
		return
	}

	entries := make([]TokenListEntry, 0, len(tokens))
	for _, token := range tokens {
		entry := TokenListEntry{
			ID:        token.ID,
			Email:     token.Email,
			Token:     token.Token,
			Used:      token.Used,
			CreatedAt: token.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if token.UsedAt != nil {
			entry.UsedAt = token.UsedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		entries = append(entries, entry)
	}

	pkghttp.WriteJSON(w, http.StatusOK, entries)
}
