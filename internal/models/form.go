package models

import (
	"time"
)

// Form visibility types
const (
	FormTypePublic  = "public"
	FormTypePrivate = "private"
)

// Question types
const (
	QuestionTypeMCQ  = "mcq"
	QuestionTypeText = "text"
)

// Question is a single prompt within a form. MCQ questions carry the
// candidate options; free-text questions leave Options empty.
type Question struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

// Form represents a feedback form built by an administrator
type Form struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Type        string     `json:"type"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsPrivate reports whether submissions require an access token
func (f *Form) IsPrivate() bool {
	return f.Type == FormTypePrivate
}
