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

type stubDiscoveryCallService struct {
	call      *models.DiscoveryCall
	calls     []models.DiscoveryCall
	available bool
	bookErr   error
	updateErr error

	lastClientID  int64
	lastInput     services.BookDiscoveryCallInput
	lastCallID    int64
	lastStatus    string
	lastTrainerID int64
	lastAt        time.Time
}

func (s *stubDiscoveryCallService) BookCall(_ context.Context, clientID int64, input services.BookDiscoveryCallInput) (*models.DiscoveryCall, error) {
	s.lastClientID = clientID
	s.lastInput = input
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return s.call, nil
}

func (s *stubDiscoveryCallService) CheckAvailability(_ context.Context, trainerID int64, requestedTime time.Time, _ int) (bool, error) {
	s.lastTrainerID = trainerID
	s.lastAt = requestedTime
	return s.available, nil
}

func (s *stubDiscoveryCallService) UpdateStatus(_ context.Context, actorID int64, role string, callID int64, requestedStatus string) (*models.DiscoveryCall, error) {
	s.lastCallID = callID
	s.lastStatus = requestedStatus
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.call, nil
}

func (s *stubDiscoveryCallService) ListForPair(_ context.Context, _ int64, _ string, clientID, trainerID int64) ([]models.DiscoveryCall, error) {
	s.lastClientID = clientID
	s.lastTrainerID = trainerID
	return s.calls, nil
}

func callTestApp(service *stubDiscoveryCallService, role, userID string) *fiber.App {
	handler := NewDiscoveryCallHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Post("/api/v1/discovery-calls", handler.BookCall)
	app.Get("/api/v1/discovery-calls", handler.ListCalls)
	app.Put("/api/v1/discovery-calls/:id/status", handler.UpdateStatus)
	app.Get("/api/v1/trainers/:id/availability", handler.CheckAvailability)
	return app
}

func bookedCall() *models.DiscoveryCall {
	return &models.DiscoveryCall{
		ID:              3,
		ClientID:        42,
		TrainerID:       7,
		ScheduledAt:     time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
		DurationMinutes: 30,
		Status:          "booked",
	}
}

func TestBookCallParsesSchedule(t *testing.T) {
	service := &stubDiscoveryCallService{call: bookedCall()}
	app := callTestApp(service, models.RoleClient, "42")

	body := `{"trainer_id":7,"scheduled_at":"2026-09-10T15:00:00Z","duration_minutes":30}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery-calls", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastClientID != 42 || service.lastInput.TrainerID != 7 {
		t.Fatalf("booking not forwarded: client %d input %+v", service.lastClientID, service.lastInput)
	}
	if !service.lastInput.ScheduledAt.Equal(time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("scheduled_at parsed wrong: %s", service.lastInput.ScheduledAt)
	}
}

func TestBookCallRejectsBadTimestamp(t *testing.T) {
	service := &stubDiscoveryCallService{}
	app := callTestApp(service, models.RoleClient, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery-calls", strings.NewReader(`{"trainer_id":7,"scheduled_at":"tomorrow"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBookCallSlotConflictMapsTo409(t *testing.T) {
	service := &stubDiscoveryCallService{bookErr: services.ErrConflict}
	app := callTestApp(service, models.RoleClient, "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/discovery-calls", strings.NewReader(`{"trainer_id":7,"scheduled_at":"2026-09-10T15:00:00Z"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestUpdateStatusForwardsRequestedStatus(t *testing.T) {
	service := &stubDiscoveryCallService{call: bookedCall()}
	app := callTestApp(service, models.RoleTrainer, "7")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/discovery-calls/3/status", strings.NewReader(`{"status":"in_progress"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastCallID != 3 || service.lastStatus != "in_progress" {
		t.Fatalf("status update not forwarded: call %d status %q", service.lastCallID, service.lastStatus)
	}
}

func TestCheckAvailabilityReturnsFlag(t *testing.T) {
	service := &stubDiscoveryCallService{available: true}
	app := callTestApp(service, models.RoleClient, "42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trainers/7/availability?at=2026-09-10T15:00:00Z&duration=45", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !body.Available || service.lastTrainerID != 7 {
		t.Fatalf("availability check wrong: %+v trainer %d", body, service.lastTrainerID)
	}
}

func TestListCallsTrainerScopesPair(t *testing.T) {
	service := &stubDiscoveryCallService{calls: []models.DiscoveryCall{*bookedCall()}}
	app := callTestApp(service, models.RoleTrainer, "7")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/discovery-calls?client_id=42", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastTrainerID != 7 || service.lastClientID != 42 {
		t.Fatalf("expected pair (42, 7), got (%d, %d)", service.lastClientID, service.lastTrainerID)
	}
}
