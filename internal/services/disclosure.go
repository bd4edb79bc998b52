package services

import (
	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

// The disclosure resolver maps (stage, category) to a reveal level. It is
// pure: callers pass the stage in (including forced stages for admin
// preview) and the resolver never reads persisted state.

// unlockStage is the minimum happy-path stage at which a category becomes
// fully visible. Visibility is monotone: once unlocked it stays unlocked at
// every later happy-path stage.
var unlockStage = map[models.ContentCategory]models.Stage{
	models.CategoryBasicInformation: models.StageLiked,
	models.CategoryWaysOfWorking:    models.StageMatched,
	models.CategoryPricingDiscovery: models.StageDiscoveryCompleted,
	models.CategoryGallery:          models.StageDiscoveryCompleted,
	models.CategoryReviews:          models.StageDiscoveryCompleted,
}

// teaserStage is the stage at which a category starts showing partial
// fallback content instead of a generic placeholder.
var teaserStage = map[models.ContentCategory]models.Stage{
	models.CategoryBasicInformation: models.StageBrowsing,
	models.CategoryWaysOfWorking:    models.StageLiked,
	models.CategoryPricingDiscovery: models.StageMatched,
	models.CategoryReviews:          models.StageMatched,
}

// guestTeaser lists the categories a signed-out viewer may see as a teaser.
// Everything else is concealed for guests regardless of stage.
var guestTeaser = map[models.ContentCategory]bool{
	models.CategoryBasicInformation: true,
}

// Categories returns every disclosable category in render order.
func Categories() []models.ContentCategory {
	return []models.ContentCategory{
		models.CategoryBasicInformation,
		models.CategoryWaysOfWorking,
		models.CategoryPricingDiscovery,
		models.CategoryGallery,
		models.CategoryReviews,
	}
}

// VisibilityOf resolves the reveal level of one profile category for a
// viewer at the given stage. Terminal stages resolve as browsing, so a
// declined pair sees nothing it has not already lost standing for.
func VisibilityOf(stage models.Stage, category models.ContentCategory, isGuest bool) models.Visibility {
	if isGuest {
		if guestTeaser[category] {
			return models.VisibilityTeaser
		}
		return models.VisibilityConcealed
	}

	unlock, ok := unlockStage[category]
	if !ok {
		return models.VisibilityConcealed
	}

	rank := stageRank(stage)
	if rank >= stageRank(unlock) {
		return models.VisibilityVisible
	}
	if teaser, ok := teaserStage[category]; ok && rank >= stageRank(teaser) {
		return models.VisibilityTeaser
	}
	return models.VisibilityConcealed
}

// fallbackContent holds the deterministic placeholder copy per category and
// reveal level. Stable across renders so screens and tests agree.
var fallbackContent = map[models.ContentCategory]map[models.Visibility]string{
	models.CategoryBasicInformation: {
		models.VisibilityConcealed: "Trainer profile",
		models.VisibilityTeaser:    "first_name_only",
	},
	models.CategoryWaysOfWorking: {
		models.VisibilityConcealed: "Unlocks as you get to know each other",
		models.VisibilityTeaser:    "Available for chat",
	},
	models.CategoryPricingDiscovery: {
		models.VisibilityConcealed: "Pricing shared after a discovery call",
		models.VisibilityTeaser:    "Book a discovery call to discuss pricing",
	},
	models.CategoryGallery: {
		models.VisibilityConcealed: "Gallery unlocks after a discovery call",
	},
	models.CategoryReviews: {
		models.VisibilityConcealed: "Reviews unlock as trust builds",
		models.VisibilityTeaser:    "Rated by clients",
	},
}

// FallbackContent returns the placeholder string for a category when the
// full content is withheld; empty for visible.
func FallbackContent(category models.ContentCategory, visibility models.Visibility) string {
	if visibility == models.VisibilityVisible {
		return ""
	}
	return fallbackContent[category][visibility]
}
