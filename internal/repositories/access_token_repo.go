package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/formloop/formloop/internal/database"
	"github.com/formloop/formloop/internal/models"
	"github.com/jackc/pgx/v5"
)

// rowScanner abstracts pgx.Row and pgx.Rows for shared scan helpers
type rowScanner interface {
	Scan(dest ...any) error
}

// AccessTokenRepository handles access token data access
type AccessTokenRepository struct {
	db *database.DB
}

// NewAccessTokenRepository creates a new AccessTokenRepository
func NewAccessTokenRepository(db *database.DB) *AccessTokenRepository {
	return &AccessTokenRepository{db: db}
}

func scanAccessTokenRow(row rowScanner) (*models.AccessToken, error) {
	var token models.AccessToken
	var usedAt *time.Time

	err := row.Scan(
		&token.ID, &token.FormID, &token.Email, &token.Token,
		&token.Used, &usedAt, &token.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	token.UsedAt = usedAt
	return &token, nil
}

func scanAccessTokenRows(rows pgx.Rows) ([]*models.AccessToken, error) {
	defer rows.Close()

	tokens := make([]*models.AccessToken, 0)

	for rows.Next() {
		token, err := scanAccessTokenRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access token rows: %w", err)
	}

	return tokens, nil
}

// Create persists a new unused access token. The UNIQUE index on the token
// column backs the generator's global uniqueness guarantee; a collision that
// slips past the pre-insert probe surfaces as ErrConflict.
func (r *AccessTokenRepository) Create(ctx context.Context, formID, email, token string) (*models.AccessToken, error) {
	query := `
		INSERT INTO access_tokens (form_id, email, token)
		VALUES ($1, $2, $3)
		RETURNING id, form_id, email, token, used, used_at, created_at
	`

	record, err := scanAccessTokenRow(r.db.Pool.QueryRow(ctx, query, formID, email, token))
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return record, nil
}

// TokenExists reports whether any token record carries the given value,
// regardless of form. Used by the generator's uniqueness check.
func (r *AccessTokenRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM access_tokens WHERE token = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check token existence: %w", database.MapPostgresError(err))
	}

	return exists, nil
}

// GetByFormAndToken retrieves the token record matching exactly the given
// form and token value. A token issued for a different form is not found.
func (r *AccessTokenRepository) GetByFormAndToken(ctx context.Context, formID, token string) (*models.AccessToken, error) {
	query := `
		SELECT id, form_id, email, token, used, used_at, created_at
		FROM access_tokens
		WHERE form_id = $1 AND token = $2
	`

	return scanAccessTokenRow(r.db.Pool.QueryRow(ctx, query, formID, token))
}

// MarkUsed flips the used flag for an unused token. The conditional update
// is the single atomic step that resolves concurrent redemption attempts:
// exactly one caller sees rows affected, all others get ErrTokenAlreadyUsed.
func (r *AccessTokenRepository) MarkUsed(ctx context.Context, id string) error {
	query := `
		UPDATE access_tokens
		SET used = TRUE, used_at = NOW()
		WHERE id = $1 AND used = FALSE
	`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark token as used: %w", database.MapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return models.ErrTokenAlreadyUsed
	}

	return nil
}

// ListByForm returns all tokens issued for a form, newest first. Exposed to
// operators so tokens that failed to send can be retrieved and resent.
func (r *AccessTokenRepository) ListByForm(ctx context.Context, formID string) ([]*models.AccessToken, error) {
	query := `
		SELECT id, form_id, email, token, used, used_at, created_at
		FROM access_tokens
		WHERE form_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access tokens: %w", database.MapPostgresError(err))
	}

	return scanAccessTokenRows(rows)
}

// DeleteUsedBefore prunes consumed tokens whose redemption predates the
// cutoff. Unused tokens are never deleted.
func (r *AccessTokenRepository) DeleteUsedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM access_tokens
		WHERE used = TRUE AND used_at < $1
	`

	result, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune used tokens: %w", database.MapPostgresError(err))
	}

	return result.RowsAffected(), nil
}
