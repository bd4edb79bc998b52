package models

import "time"

type DiscoveryCall struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	TrainerID       int64     `json:"trainer_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
