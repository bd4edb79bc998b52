package models

import "time"

// ClientCoachingStyle and TrainerCoachingStyle are independent catalogs.
// Deactivation is soft: a deactivated style disappears from pickers but its
// mappings and historical matches stay intact.

type ClientCoachingStyle struct {
	ID           int64     `json:"id"`
	StyleKey     string    `json:"style_key"`
	Label        string    `json:"label"`
	Description  *string   `json:"description,omitempty"`
	Emoji        *string   `json:"emoji,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TrainerCoachingStyle struct {
	ID           int64     `json:"id"`
	StyleKey     string    `json:"style_key"`
	Label        string    `json:"label"`
	Description  *string   `json:"description,omitempty"`
	Emoji        *string   `json:"emoji,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MappingType string

const (
	MappingPrimary   MappingType = "primary"
	MappingSecondary MappingType = "secondary"
	MappingTertiary  MappingType = "tertiary"
)

// DefaultWeight is the weight a mapping starts with; it stays editable
// independently of the type afterwards.
func (t MappingType) DefaultWeight() int {
	switch t {
	case MappingPrimary:
		return 100
	case MappingSecondary:
		return 60
	case MappingTertiary:
		return 30
	default:
		return 0
	}
}

// CoachingStyleMapping is one weighted edge between a client style and a
// trainer style.
type CoachingStyleMapping struct {
	ID             int64       `json:"id"`
	ClientStyleID  int64       `json:"client_style_id"`
	TrainerStyleID int64       `json:"trainer_style_id"`
	Weight         int         `json:"weight"`
	MappingType    MappingType `json:"mapping_type"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// StyleContribution explains how one declared client style contributed to a
// match score.
type StyleContribution struct {
	ClientStyleID  int64 `json:"client_style_id"`
	TrainerStyleID int64 `json:"trainer_style_id,omitempty"`
	Weight         int   `json:"weight"`
	Unmapped       bool  `json:"unmapped,omitempty"`
}
