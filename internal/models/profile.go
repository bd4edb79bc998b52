package models

import "time"

type ClientProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	FullName           *string   `json:"full_name"`
	AvatarURL          *string   `json:"avatar_url"`
	Goals              *[]string `json:"goals"`
	CoachingStyleIDs   []int64   `json:"coaching_style_ids"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type TrainerProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	FullName           *string   `json:"full_name"`
	AvatarURL          *string   `json:"avatar_url"`
	Bio                *string   `json:"bio"`
	WaysOfWorking      *string   `json:"ways_of_working"`
	Specializations    *[]string `json:"specializations"`
	HourlyRate         *float64  `json:"hourly_rate"`
	DiscoveryCallNote  *string   `json:"discovery_call_note"`
	Rating             *float64  `json:"rating"`
	TotalReviews       int       `json:"total_reviews"`
	CoachingStyleIDs   []int64   `json:"coaching_style_ids"`
	GalleryURLs        []string  `json:"gallery_urls"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TrainerWithScore pairs a trainer profile with a coaching-style fit score
// for one client.
type TrainerWithScore struct {
	TrainerProfile
	MatchScore    int                 `json:"match_score"`
	Contributions []StyleContribution `json:"contributions,omitempty"`
}

// TrainerSection is one disclosable region of a trainer profile after the
// disclosure resolver has been applied for the viewer.
type TrainerSection struct {
	Category   ContentCategory `json:"category"`
	Visibility Visibility      `json:"visibility"`
	Content    any             `json:"content,omitempty"`
	Fallback   string          `json:"fallback,omitempty"`
}

// TrainerDetailView is the stage-resolved rendering of one trainer profile.
type TrainerDetailView struct {
	TrainerID int64            `json:"trainer_id"`
	Stage     Stage            `json:"stage"`
	Sections  []TrainerSection `json:"sections"`
}
