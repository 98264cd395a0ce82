package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/formloop/formloop/internal/models"
	pkglogger "github.com/formloop/formloop/pkg/logger"
)

// AccessTokenRepository defines the token store operations the service needs
type AccessTokenRepository interface {
	Create(ctx context.Context, formID, email, token string) (*models.AccessToken, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	GetByFormAndToken(ctx context.Context, formID, token string) (*models.AccessToken, error)
	MarkUsed(ctx context.Context, id string) error
	ListByForm(ctx context.Context, formID string) ([]*models.AccessToken, error)
}

// FormGetter resolves form references during issuance
type FormGetter interface {
	GetByID(ctx context.Context, id string) (*models.Form, error)
}

// IssueOutcome is the per-email result of a token issuance batch. A token
// value means the record was persisted and the token is redeemable whether
// or not delivery succeeded; an empty token means processing failed before
// persistence and Err carries the reason.
type IssueOutcome struct {
	Email     string
	Token     string
	Delivered bool
	Err       error
}

// Issued reports whether a token was persisted for this email
func (o IssueOutcome) Issued() bool {
	return o.Token != ""
}

// IssueReport aggregates a partial-success issuance batch. Successful counts
// issued tokens (sent or not); Failed counts error entries, so an email
// whose token persisted but failed to send contributes to both.
type IssueReport struct {
	Total      int
	Successful int
	Failed     int
	Outcomes   []IssueOutcome
}

// AccessTokenService orchestrates token issuance and redemption for private
// forms. Dependencies are injected so stores and transports can be swapped
// for test doubles.
type AccessTokenService struct {
	tokens       AccessTokenRepository
	forms        FormGetter
	email        EmailSender
	logger       *slog.Logger
	audit        *pkglogger.AuditLogger
	maxBatchSize int
}

// NewAccessTokenService creates a new AccessTokenService
func NewAccessTokenService(
	tokens AccessTokenRepository,
	forms FormGetter,
	email EmailSender,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
	maxBatchSize int,
) *AccessTokenService {
	return &AccessTokenService{
		tokens:       tokens,
		forms:        forms,
		email:        email,
		logger:       logger,
		audit:        audit,
		maxBatchSize: maxBatchSize,
	}
}

// IssueTokens generates, persists and delivers one access token per email.
// Emails are processed sequentially and independently: one email's failure
// never aborts the rest of the batch, and per-email errors ride in the
// report rather than the returned error. The returned error is reserved for
// malformed input and form lookup failure, where nothing was attempted.
func (s *AccessTokenService) IssueTokens(ctx context.Context, formID, formTitle string, emails []string) (*IssueReport, error) {
	if formID == "" || len(emails) == 0 {
		return nil, models.ErrBadRequest
	}
	if len(emails) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: batch exceeds %d emails", models.ErrBadRequest, s.maxBatchSize)
	}

	form, err := s.forms.GetByID(ctx, formID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up form: %w", err)
	}

	if !form.IsPrivate() {
		// Tokens for public forms are redeemable but never required
		s.logger.Warn("issuing tokens for a public form",
			slog.String("form_id", formID))
	}

	if formTitle == "" {
		formTitle = form.Title
	}

	report := &IssueReport{Total: len(emails)}

	for _, email := range emails {
		email = strings.TrimSpace(email)
		outcome := s.issueOne(ctx, formID, formTitle, email)
		if outcome.Issued() {
			report.Successful++
		}
		if outcome.Err != nil {
			report.Failed++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	s.audit.LogTokenIssuance(formID, report.Total, report.Successful, report.Failed)

	return report, nil
}

// issueOne runs the generate -> persist -> dispatch sequence for a single
// email. Persistence happens before dispatch so the token survives a
// delivery failure and stays redeemable.
func (s *AccessTokenService) issueOne(ctx context.Context, formID, formTitle, email string) IssueOutcome {
	token, err := uniqueToken(ctx, maxTokenAttempts, GenerateToken, s.tokens.TokenExists)
	if err != nil {
		s.logger.Error("failed to generate unique token",
			slog.String("form_id", formID),
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return IssueOutcome{Email: email, Err: err}
	}

	if _, err := s.tokens.Create(ctx, formID, email, token); err != nil {
		s.logger.Error("failed to persist access token",
			slog.String("form_id", formID),
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return IssueOutcome{Email: email, Err: err}
	}

	if err := s.email.SendAccessToken(ctx, email, formTitle, token, formID); err != nil {
		// The token is persisted and counts as issued; an operator can
		// retrieve and resend it out-of-band.
		s.logger.Warn("access token issued but delivery failed",
			slog.String("form_id", formID),
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return IssueOutcome{Email: email, Token: token, Delivered: false, Err: models.ErrEmailSendFailed}
	}

	return IssueOutcome{Email: email, Token: token, Delivered: true}
}

// Validate redeems an access token for a form. The lookup is keyed on the
// exact (form, token) pair, so a token issued for another form is invalid
// here even though the token string exists. The used-flag flip is a
// conditional update in the store; when two callers race on the same token,
// exactly one succeeds and the rest observe ErrTokenAlreadyUsed.
func (s *AccessTokenService) Validate(ctx context.Context, formID, token string) error {
	if formID == "" || token == "" {
		return models.ErrBadRequest
	}

	record, err := s.tokens.GetByFormAndToken(ctx, formID, token)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.audit.LogTokenRedemption(formID, false, "invalid token")
			return models.ErrInvalidToken
		}
		return fmt.Errorf("failed to look up access token: %w", err)
	}

	if record.IsUsed() {
		s.audit.LogTokenRedemption(formID, false, "token already used")
		return models.ErrTokenAlreadyUsed
	}

	if err := s.tokens.MarkUsed(ctx, record.ID); err != nil {
		if errors.Is(err, models.ErrTokenAlreadyUsed) {
			// Lost the race to a concurrent redemption
			s.audit.LogTokenRedemption(formID, false, "token already used")
			return models.ErrTokenAlreadyUsed
		}
		return fmt.Errorf("failed to consume access token: %w", err)
	}

	s.audit.LogTokenRedemption(formID, true, "")
	return nil
}

// ListTokens returns all tokens issued for a form so operators can inspect
// delivery state and resend tokens that failed to dispatch.
func (s *AccessTokenService) ListTokens(ctx context.Context, formID string) ([]*models.AccessToken, error) {
	if formID == "" {
		return nil, models.ErrBadRequest
	}

	if _, err := s.forms.GetByID(ctx, formID); err != nil {
		return nil, err
	}

	return s.tokens.ListByForm(ctx, formID)
}
