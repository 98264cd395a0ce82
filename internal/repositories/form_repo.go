package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formloop/formloop/internal/database"
	"github.com/formloop/formloop/internal/models"
	"github.com/jackc/pgx/v5"
)

// FormRepository handles form data access
type FormRepository struct {
	db *database.DB
}

// NewFormRepository creates a new FormRepository
func NewFormRepository(db *database.DB) *FormRepository {
	return &FormRepository{db: db}
}

func scanFormRow(row rowScanner) (*models.Form, error) {
	var form models.Form
	var questionsJSON []byte

	err := row.Scan(
		&form.ID, &form.Title, &form.Description, &questionsJSON,
		&form.Type, &form.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if err := json.Unmarshal(questionsJSON, &form.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode form questions: %w", err)
	}

	return &form, nil
}

// Create persists a new form. Questions are stored as a JSONB document.
func (r *FormRepository) Create(ctx context.Context, form *models.Form) (*models.Form, error) {
	questionsJSON, err := json.Marshal(form.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form questions: %w", err)
	}

	query := `
		INSERT INTO forms (title, description, questions, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, description, questions, type, created_at
	`

	created, err := scanFormRow(r.db.Pool.QueryRow(ctx, query,
		form.Title, form.Description, questionsJSON, form.Type))
	if err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	return created, nil
}

// GetByID retrieves a form by its identifier
func (r *FormRepository) GetByID(ctx context.Context, id string) (*models.Form, error) {
	query := `
		SELECT id, title, description, questions, type, created_at
		FROM forms
		WHERE id = $1
	`

	return scanFormRow(r.db.Pool.QueryRow(ctx, query, id))
}

// List returns forms newest first, optionally filtered by visibility type.
// An empty formType returns all forms.
func (r *FormRepository) List(ctx context.Context, formType string) ([]*models.Form, error) {
	query := `
		SELECT id, title, description, questions, type, created_at
		FROM forms
		WHERE ($1 = '' OR type = $1)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, formType)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", database.MapPostgresError(err))
	}

	return scanFormRows(rows)
}

func scanFormRows(rows pgx.Rows) ([]*models.Form, error) {
	defer rows.Close()

	forms := make([]*models.Form, 0)

	for rows.Next() {
		form, err := scanFormRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", err)
		}
		forms = append(forms, form)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating form rows: %w", err)
	}

	return forms, nil
}
