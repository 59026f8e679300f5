package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/handler"
	"github.com/hikma-academy/academy-api/internal/service"
)

type mockPaymentService struct {
	registered  dto.PaymentProofResponse
	decided     dto.PaymentProofResponse
	decideErr   error
	lastPayload dto.PaymentProofCreateRequest
	lastFilter  dto.PaymentProofFilter
	lastActor   service.ActivityActor
}

func (m *mockPaymentService) Register(_ context.Context, payload dto.PaymentProofCreateRequest) (dto.PaymentProofResponse, error) {
	m.lastPayload = payload
	return m.registered, nil
}

func (m *mockPaymentService) List(_ context.Context, filter dto.PaymentProofFilter) ([]dto.PaymentProofResponse, error) {
	m.lastFilter = filter
	return []dto.PaymentProofResponse{m.registered}, nil
}

func (m *mockPaymentService) Decide(_ context.Context, _ uint, _ dto.PaymentProofDecisionRequest, actor service.ActivityActor) (dto.PaymentProofResponse, error) {
	m.lastActor = actor
	if m.decideErr != nil {
		return dto.PaymentProofResponse{}, m.decideErr
	}
	return m.decided, nil
}

func newPaymentApp(svc service.PaymentService) *fiber.App {
	app := fiber.New()
	h := handler.NewPaymentHandler(svc, zerolog.New(io.Discard))

	student := app.Group("/api/v1/payments", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "student")
		return c.Next()
	})
	h.Register(student)

	admin := app.Group("/api/admin", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	h.RegisterAdmin(admin)

	return app
}

func TestPaymentHandlerRegisterForcesStudentFromToken(t *testing.T) {
	svc := &mockPaymentService{registered: dto.PaymentProofResponse{ID: 5, StudentID: 7, Status: "pending"}}
	app := newPaymentApp(svc)

	body, err := json.Marshal(dto.PaymentProofCreateRequest{StudentID: 999, CourseID: 2, ProofURL: "https://cdn.example.com/proof.png"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	require.Equal(t, uint(7), svc.lastPayload.StudentID)
	require.Equal(t, uint(2), svc.lastPayload.CourseID)
}

func TestPaymentHandlerDecideConflict(t *testing.T) {
	svc := &mockPaymentService{decideErr: service.ErrPaymentAlreadyReviewed}
	app := newPaymentApp(svc)

	body, err := json.Marshal(dto.PaymentProofDecisionRequest{Approve: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/payments/5/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestPaymentHandlerDecidePassesActor(t *testing.T) {
	svc := &mockPaymentService{decided: dto.PaymentProofResponse{ID: 5, Status: "approved"}}
	app := newPaymentApp(svc)

	body, err := json.Marshal(dto.PaymentProofDecisionRequest{Approve: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/payments/5/decision", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, uint(1), svc.lastActor.ID)
	require.Equal(t, "admin", svc.lastActor.Role)

	var response struct {
		Success bool                     `json:"success"`
		Data    dto.PaymentProofResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "approved", response.Data.Status)
}

func TestPaymentHandlerListParsesFilters(t *testing.T) {
	svc := &mockPaymentService{}
	app := newPaymentApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/payments?student_id=7&status=pending", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, svc.lastFilter.StudentID)
	require.Equal(t, uint(7), *svc.lastFilter.StudentID)
	require.NotNil(t, svc.lastFilter.Status)
	require.Equal(t, "pending", *svc.lastFilter.Status)
}
