package services

import (
	"testing"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

func TestVisibilityMonotoneAlongHappyPath(t *testing.T) {
	rank := map[models.Visibility]int{
		models.VisibilityConcealed: 0,
		models.VisibilityTeaser:    1,
		models.VisibilityVisible:   2,
	}
	for _, category := range Categories() {
		prev := -1
		for _, stage := range happyPath {
			got := rank[VisibilityOf(stage, category, false)]
			if got < prev {
				t.Fatalf("visibility of %s regressed at stage %s", category, stage)
			}
			prev = got
		}
	}
}

func TestVisibilityUnlockStages(t *testing.T) {
	cases := []struct {
		stage    models.Stage
		category models.ContentCategory
		want     models.Visibility
	}{
		{models.StageBrowsing, models.CategoryBasicInformation, models.VisibilityTeaser},
		{models.StageLiked, models.CategoryBasicInformation, models.VisibilityVisible},
		{models.StageBrowsing, models.CategoryWaysOfWorking, models.VisibilityConcealed},
		{models.StageLiked, models.CategoryWaysOfWorking, models.VisibilityTeaser},
		{models.StageMatched, models.CategoryWaysOfWorking, models.VisibilityVisible},
		{models.StageLiked, models.CategoryPricingDiscovery, models.VisibilityConcealed},
		{models.StageMatched, models.CategoryPricingDiscovery, models.VisibilityTeaser},
		{models.StageDiscoveryInProgress, models.CategoryPricingDiscovery, models.VisibilityTeaser},
		{models.StageDiscoveryCompleted, models.CategoryPricingDiscovery, models.VisibilityVisible},
		{models.StageMatched, models.CategoryGallery, models.VisibilityConcealed},
		{models.StageDiscoveryCompleted, models.CategoryGallery, models.VisibilityVisible},
		{models.StageMatched, models.CategoryReviews, models.VisibilityTeaser},
		{models.StageActiveClient, models.CategoryReviews, models.VisibilityVisible},
	}
	for _, tc := range cases {
		if got := VisibilityOf(tc.stage, tc.category, false); got != tc.want {
			t.Fatalf("VisibilityOf(%s, %s) = %s, want %s", tc.stage, tc.category, got, tc.want)
		}
	}
}

func TestVisibilityGuestCap(t *testing.T) {
	// Guests only ever see the basic-information teaser, no matter the stage.
	for _, stage := range happyPath {
		for _, category := range Categories() {
			got := VisibilityOf(stage, category, true)
			if category == models.CategoryBasicInformation {
				if got != models.VisibilityTeaser {
					t.Fatalf("guest %s at %s = %s, want teaser", category, stage, got)
				}
				continue
			}
			if got != models.VisibilityConcealed {
				t.Fatalf("guest %s at %s = %s, want concealed", category, stage, got)
			}
		}
	}
}

func TestVisibilityTerminalStagesResolveAsBrowsing(t *testing.T) {
	for _, terminal := range []models.Stage{models.StageDeclined, models.StageUnmatched} {
		for _, category := range Categories() {
			got := VisibilityOf(terminal, category, false)
			want := VisibilityOf(models.StageBrowsing, category, false)
			if got != want {
				t.Fatalf("VisibilityOf(%s, %s) = %s, want %s", terminal, category, got, want)
			}
		}
	}
}

func TestFallbackContentStable(t *testing.T) {
	if got := FallbackContent(models.CategoryPricingDiscovery, models.VisibilityConcealed); got != "Pricing shared after a discovery call" {
		t.Fatalf("unexpected concealed pricing fallback: %q", got)
	}
	if got := FallbackContent(models.CategoryGallery, models.VisibilityVisible); got != "" {
		t.Fatalf("visible sections must not carry fallback, got %q", got)
	}
	a := FallbackContent(models.CategoryReviews, models.VisibilityTeaser)
	b := FallbackContent(models.CategoryReviews, models.VisibilityTeaser)
	if a != b {
		t.Fatalf("fallback copy not stable: %q vs %q", a, b)
	}
}
