package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionAttempt records one POST against the job Apply endpoint,
// including the domain parameter that was used (empty when the parameter
// was omitted) and the outcome reported by the remote service.
type SubmissionAttempt struct {
	ID         uuid.UUID              `json:"id"`
	JobID      string                 `json:"job_id"`
	Domain     string                 `json:"domain"`
	Status     string                 `json:"status"`
	HTTPStatus int                    `json:"http_status"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Applicant holds the candidate fields sent with every application.
type Applicant struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}
