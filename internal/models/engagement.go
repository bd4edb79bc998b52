package models

import "time"

// Stage is the lifecycle position of one client/trainer relationship.
// The happy path runs browsing → active_client; declined and unmatched are
// terminal side branches.
type Stage string

const (
	StageBrowsing            Stage = "browsing"
	StageLiked               Stage = "liked"
	StageMatched             Stage = "matched"
	StageDiscoveryCallBooked Stage = "discovery_call_booked"
	StageDiscoveryInProgress Stage = "discovery_in_progress"
	StageDiscoveryCompleted  Stage = "discovery_completed"
	StageAgreed              Stage = "agreed"
	StageGettingToKnowCoach  Stage = "getting_to_know_your_coach"
	StageActiveClient        Stage = "active_client"
	StageDeclined            Stage = "declined"
	StageUnmatched           Stage = "unmatched"
)

func (s Stage) Terminal() bool {
	return s == StageDeclined || s == StageUnmatched
}

// ParseStage validates a raw stage string from an API parameter.
func ParseStage(raw string) (Stage, bool) {
	switch stage := Stage(raw); stage {
	case StageBrowsing, StageLiked, StageMatched,
		StageDiscoveryCallBooked, StageDiscoveryInProgress, StageDiscoveryCompleted,
		StageAgreed, StageGettingToKnowCoach, StageActiveClient,
		StageDeclined, StageUnmatched:
		return stage, true
	default:
		return "", false
	}
}

// Engagement is the single relationship record per (client, trainer) pair.
type Engagement struct {
	ID             int64      `json:"id"`
	ClientID       int64      `json:"client_id"`
	TrainerID      int64      `json:"trainer_id"`
	Stage          Stage      `json:"stage"`
	Notes          *string    `json:"notes,omitempty"`
	BecameClientAt *time.Time `json:"became_client_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ContentCategory tags a disclosable section of a trainer profile. It is a
// static classification of UI regions, never persisted.
type ContentCategory string

const (
	CategoryBasicInformation ContentCategory = "basic_information"
	CategoryWaysOfWorking    ContentCategory = "ways_of_working"
	CategoryPricingDiscovery ContentCategory = "pricing_discovery_call"
	CategoryGallery          ContentCategory = "gallery"
	CategoryReviews          ContentCategory = "reviews"
)

// Visibility is the computed reveal level for one category at one stage.
type Visibility string

const (
	VisibilityConcealed Visibility = "concealed"
	VisibilityTeaser    Visibility = "teaser"
	VisibilityVisible   Visibility = "visible"
)
