package models

import (
	"time"
)

// FormResponse is one anonymous submission against a form. Answers map
// question IDs to the selected option or free-text answer.
type FormResponse struct {
	ID          string            `json:"id"`
	FormID      string            `json:"form_id"`
	Answers     map[string]string `json:"answers"`
	SubmittedAt time.Time         `json:"submitted_at"`
}
