package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Not-Another-Coach/CoachLinkBack/internal/models"
	"github.com/Not-Another-Coach/CoachLinkBack/internal/services"
)

type stubAssignmentService struct {
	assignment *models.TemplateAssignment
	history    []models.TemplateAssignment
	assignErr  error

	lastTrainerID int64
	lastClientID  int64
	lastInput     services.AssignTemplateInput
	lastReason    string
}

func (s *stubAssignmentService) Assign(_ context.Context, trainerID int64, input services.AssignTemplateInput) (*models.TemplateAssignment, error) {
	s.lastTrainerID = trainerID
	s.lastInput = input
	if s.assignErr != nil {
		return nil, s.assignErr
	}
	return s.assignment, nil
}

func (s *stubAssignmentService) ExpireActive(_ context.Context, trainerID, clientID int64, reason string) (*models.TemplateAssignment, error) {
	s.lastTrainerID = trainerID
	s.lastClientID = clientID
	s.lastReason = reason
	return s.assignment, nil
}

func (s *stubAssignmentService) History(_ context.Context, actorID int64, role string, clientID int64) ([]models.TemplateAssignment, error) {
	s.lastClientID = clientID
	return s.history, nil
}

func (s *stubAssignmentService) ActiveForClient(_ context.Context, clientID int64) (*models.TemplateAssignment, error) {
	s.lastClientID = clientID
	return s.assignment, nil
}

func assignmentTestApp(service *stubAssignmentService, role, userID string) *fiber.App {
	handler := NewAssignmentHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/assignments", handler.Assign)
	app.Post("/api/v1/assignments/expire", handler.Expire)
	app.Get("/api/v1/assignments/active", handler.Active)
	app.Get("/api/v1/assignments/history", handler.History)
	app.Get("/api/v1/assignments/history/:clientId", handler.History)
	return app
}

func activeAssignment() *models.TemplateAssignment {
	return &models.TemplateAssignment{
		ID:             4,
		ClientID:       42,
		TrainerID:      7,
		TemplateName:   "Hypertrophy block A",
		TemplateBaseID: 19,
		Status:         models.AssignmentActive,
		AssignedAt:     time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC),
		CorrelationID:  "b2f0c7e8-1111-2222-3333-444455556666",
	}
}

func TestAssignCreatesAssignment(t *testing.T) {
	service := &stubAssignmentService{assignment: activeAssignment()}
	app := assignmentTestApp(service, models.RoleTrainer, "7")

	body := `{"client_id":42,"template_name":"Hypertrophy block A","template_base_id":19}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != 7 || service.lastInput.ClientID != 42 || service.lastInput.TemplateBaseID != 19 {
		t.Fatalf("input not forwarded: trainer %d input %+v", service.lastTrainerID, service.lastInput)
	}
}

func TestAssignConflictCarriesExistingAssignment(t *testing.T) {
	existing := activeAssignment()
	service := &stubAssignmentService{
		assignErr: &services.AssignmentConflictError{Existing: existing},
	}
	app := assignmentTestApp(service, models.RoleTrainer, "7")

	body := `{"client_id":42,"template_name":"New block","template_base_id":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var respBody struct {
		ExistingAssignment *models.TemplateAssignment `json:"existing_assignment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if respBody.ExistingAssignment == nil || respBody.ExistingAssignment.ID != existing.ID {
		t.Fatalf("conflict response should carry the blocking assignment, got %+v", respBody.ExistingAssignment)
	}
}

func TestAssignClientForbidden(t *testing.T) {
	service := &stubAssignmentService{}
	app := assignmentTestApp(service, models.RoleClient, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments", strings.NewReader(`{"client_id":42}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestExpireForwardsReason(t *testing.T) {
	service := &stubAssignmentService{assignment: activeAssignment()}
	app := assignmentTestApp(service, models.RoleTrainer, "7")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assignments/expire", strings.NewReader(`{"client_id":42,"reason":"program finished"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastReason != "program finished" || service.lastClientID != 42 {
		t.Fatalf("expire call not forwarded: client %d reason %q", service.lastClientID, service.lastReason)
	}
}

func TestHistoryClientIgnoresPathParam(t *testing.T) {
	service := &stubAssignmentService{history: []models.TemplateAssignment{*activeAssignment()}}
	app := assignmentTestApp(service, models.RoleClient, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments/history", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastClientID != 42 {
		t.Fatalf("client history must be their own, got client %d", service.lastClientID)
	}
}

func TestHistoryTrainerUsesPathParam(t *testing.T) {
	service := &stubAssignmentService{history: []models.TemplateAssignment{*activeAssignment()}}
	app := assignmentTestApp(service, models.RoleTrainer, "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments/history/42", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastClientID != 42 {
		t.Fatalf("expected history for client 42, got %d", service.lastClientID)
	}
}
