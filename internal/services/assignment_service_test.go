package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
)

type stubAssignmentEngagementReader struct {
	engagement *models.Engagement
}

func (s *stubAssignmentEngagementReader) GetByPair(_ context.Context, _, _ int64) (*models.Engagement, error) {
	if s.engagement == nil {
		return nil, pgx.ErrNoRows
	}
	return s.engagement, nil
}

func TestAssignValidatesInput(t *testing.T) {
	service := NewAssignmentService(nil, nil, &stubAssignmentEngagementReader{}, nil)

	cases := []struct {
		name      string
		trainerID int64
		input     AssignTemplateInput
	}{
		{"zero client", 7, AssignTemplateInput{ClientID: 0, TemplateName: "Base", TemplateBaseID: 19}},
		{"self assignment", 7, AssignTemplateInput{ClientID: 7, TemplateName: "Base", TemplateBaseID: 19}},
		{"blank template name", 7, AssignTemplateInput{ClientID: 42, TemplateName: "  ", TemplateBaseID: 19}},
		{"zero base id", 7, AssignTemplateInput{ClientID: 42, TemplateName: "Base", TemplateBaseID: 0}},
		{"replace without a reason", 7, AssignTemplateInput{ClientID: 42, TemplateName: "Base", TemplateBaseID: 19, Replace: true}},
		{"replace with blank reason", 7, AssignTemplateInput{ClientID: 42, TemplateName: "Base", TemplateBaseID: 19, Replace: true, ReplaceReason: "   "}},
	}
	for _, tc := range cases {
		if _, err := service.Assign(context.Background(), tc.trainerID, tc.input); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestAssignRequiresActiveClientEngagement(t *testing.T) {
	input := AssignTemplateInput{ClientID: 42, TemplateName: "Base", TemplateBaseID: 19}

	service := NewAssignmentService(nil, nil, &stubAssignmentEngagementReader{}, nil)
	if _, err := service.Assign(context.Background(), 7, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("no engagement: expected ErrForbidden, got %v", err)
	}

	service = NewAssignmentService(nil, nil, &stubAssignmentEngagementReader{
		engagement: &models.Engagement{ClientID: 42, TrainerID: 7, Stage: models.StageMatched},
	}, nil)
	if _, err := service.Assign(context.Background(), 7, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("matched stage: expected ErrForbidden, got %v", err)
	}
}
