package services

import (
	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

// StageEvent is an input to the engagement stage machine.
type StageEvent string

const (
	EventLike                   StageEvent = "like"
	EventFirstMessageSent       StageEvent = "first_message_sent"
	EventDiscoveryCallBooked    StageEvent = "discovery_call_booked"
	EventDiscoveryCallStarted   StageEvent = "discovery_call_started"
	EventDiscoveryCallCompleted StageEvent = "discovery_call_completed"
	EventSelectionAccepted      StageEvent = "selection_accepted"
	EventPaymentCompleted       StageEvent = "payment_completed"
	EventDecline                StageEvent = "decline"
	EventUnmatch                StageEvent = "unmatch"
)

type stageEdge struct {
	from  models.Stage
	event StageEvent
	to    models.Stage
}

// stageTransitions is the single source of truth for legal stage moves.
// Decline/unmatch are handled separately since they apply from every
// non-terminal stage.
var stageTransitions = []stageEdge{
	{models.StageBrowsing, EventLike, models.StageLiked},

	{models.StageBrowsing, EventFirstMessageSent, models.StageMatched},
	{models.StageLiked, EventFirstMessageSent, models.StageMatched},

	{models.StageMatched, EventDiscoveryCallBooked, models.StageDiscoveryCallBooked},
	{models.StageDiscoveryCallBooked, EventDiscoveryCallStarted, models.StageDiscoveryInProgress},
	{models.StageDiscoveryInProgress, EventDiscoveryCallCompleted, models.StageDiscoveryCompleted},

	{models.StageLiked, EventSelectionAccepted, models.StageAgreed},
	{models.StageMatched, EventSelectionAccepted, models.StageAgreed},
	{models.StageDiscoveryCallBooked, EventSelectionAccepted, models.StageAgreed},
	{models.StageDiscoveryInProgress, EventSelectionAccepted, models.StageAgreed},
	{models.StageDiscoveryCompleted, EventSelectionAccepted, models.StageAgreed},
	{models.StageAgreed, EventSelectionAccepted, models.StageGettingToKnowCoach},

	{models.StageAgreed, EventPaymentCompleted, models.StageActiveClient},
	{models.StageGettingToKnowCoach, EventPaymentCompleted, models.StageActiveClient},
}

// stageNoOps are events that are legal but leave the stage unchanged, e.g. a
// message sent when the pair is already matched or further along.
var stageNoOps = map[StageEvent][]models.Stage{
	EventFirstMessageSent: {
		models.StageMatched,
		models.StageDiscoveryCallBooked,
		models.StageDiscoveryInProgress,
		models.StageDiscoveryCompleted,
		models.StageAgreed,
		models.StageGettingToKnowCoach,
		models.StageActiveClient,
	},
	EventSelectionAccepted: {
		models.StageGettingToKnowCoach,
		models.StageActiveClient,
	},
	EventPaymentCompleted: {
		models.StageActiveClient,
	},
}

// Transition computes the next stage for an event, or ErrInvalidTransition.
// It is the only code path permitted to decide a stage change; it is pure
// and deterministic.
func Transition(current models.Stage, event StageEvent) (models.Stage, error) {
	// Terminal stages reject every event.
	if current.Terminal() {
		return current, ErrInvalidTransition
	}

	switch event {
	case EventDecline:
		return models.StageDeclined, nil
	case EventUnmatch:
		return models.StageUnmatched, nil
	}

	for _, edge := range stageTransitions {
		if edge.from == current && edge.event == event {
			return edge.to, nil
		}
	}

	for _, stage := range stageNoOps[event] {
		if stage == current {
			return current, nil
		}
	}

	return current, ErrInvalidTransition
}

// happyPath is the ordered forward progression of the relationship; used by
// the disclosure resolver for monotone visibility.
var happyPath = []models.Stage{
	models.StageBrowsing,
	models.StageLiked,
	models.StageMatched,
	models.StageDiscoveryCallBooked,
	models.StageDiscoveryInProgress,
	models.StageDiscoveryCompleted,
	models.StageAgreed,
	models.StageGettingToKnowCoach,
	models.StageActiveClient,
}

// stageRank returns the position of a stage along the happy path. Terminal
// stages rank as browsing so a declined party's information stays concealed.
func stageRank(stage models.Stage) int {
	if stage.Terminal() {
		return 0
	}
	for i, s := range happyPath {
		if s == stage {
			return i
		}
	}
	return 0
}
