package models

import "time"

type AssignmentStatus string

const (
	AssignmentActive  AssignmentStatus = "active"
	AssignmentExpired AssignmentStatus = "expired"
)

// TemplateAssignment links a client to the one onboarding template currently
// governing their onboarding. At most one active assignment may exist per
// client; supersession is an explicit expire-then-assign decision.
type TemplateAssignment struct {
	ID             int64            `json:"id"`
	ClientID       int64            `json:"client_id"`
	TrainerID      int64            `json:"trainer_id"`
	TemplateName   string           `json:"template_name"`
	TemplateBaseID int64            `json:"template_base_id"`
	Status         AssignmentStatus `json:"status"`
	AssignedAt     time.Time        `json:"assigned_at"`
	ExpiredAt      *time.Time       `json:"expired_at,omitempty"`
	ExpiredReason  *string          `json:"expired_reason,omitempty"`
	CorrelationID  string           `json:"correlation_id"`
}
