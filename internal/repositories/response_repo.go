package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formloop/formloop/internal/database"
	"github.com/formloop/formloop/internal/models"
	"github.com/jackc/pgx/v5"
)

// ResponseRepository handles form response data access
type ResponseRepository struct {
	db *database.DB
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(db *database.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

func scanResponseRow(row rowScanner) (*models.FormResponse, error) {
	var resp models.FormResponse
	var answersJSON []byte

	err := row.Scan(&resp.ID, &resp.FormID, &answersJSON, &resp.SubmittedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if err := json.Unmarshal(answersJSON, &resp.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode response answers: %w", err)
	}

	return &resp, nil
}

// Create persists an anonymous form response
func (r *ResponseRepository) Create(ctx context.Context, formID string, answers map[string]string) (*models.FormResponse, error) {
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response answers: %w", err)
	}

	query := `
		INSERT INTO responses (form_id, answers)
		VALUES ($1, $2)
		RETURNING id, form_id, answers, submitted_at
	`

	created, err := scanResponseRow(r.db.Pool.QueryRow(ctx, query, formID, answersJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	return created, nil
}

// ListByForm returns responses for a form, newest first. An empty formID
// returns all responses.
func (r *ResponseRepository) ListByForm(ctx context.Context, formID string) ([]*models.FormResponse, error) {
	query := `
		SELECT id, form_id, answers, submitted_at
		FROM responses
		WHERE ($1 = '' OR form_id::text = $1)
		ORDER BY submitted_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", database.MapPostgresError(err))
	}

	return scanResponseRows(rows)
}

func scanResponseRows(rows pgx.Rows) ([]*models.FormResponse, error) {
	defer rows.Close()

	responses := make([]*models.FormResponse, 0)

	for rows.Next() {
		resp, err := scanResponseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, resp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating response rows: %w", err)
	}

	return responses, nil
}
