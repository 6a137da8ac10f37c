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

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/handler"
	"github.com/kboateng/adesua-go-api/internal/repository"
	"github.com/kboateng/adesua-go-api/internal/service"
)

type mockResolver struct {
	resolution dto.ResolutionResponse
	list       dto.ClassAssignmentListResponse
	err        error

	lastPayload dto.ResolveClassAssignmentRequest
	lastList    dto.ClassAssignmentListRequest
	lastActor   service.Actor
}

func (m *mockResolver) Resolve(_ context.Context, _ *repository.Store, _ service.ResolutionKey) (service.Resolution, error) {
	return service.Resolution{}, nil
}

func (m *mockResolver) ResolveClassAssignment(_ context.Context, payload dto.ResolveClassAssignmentRequest, actor service.Actor) (dto.ResolutionResponse, error) {
	m.lastPayload = payload
	m.lastActor = actor
	if m.err != nil {
		return dto.ResolutionResponse{}, m.err
	}
	return m.resolution, nil
}

func (m *mockResolver) List(_ context.Context, req dto.ClassAssignmentListRequest) (dto.ClassAssignmentListResponse, error) {
	m.lastList = req
	if m.err != nil {
		return dto.ClassAssignmentListResponse{}, m.err
	}
	return m.list, nil
}

func newAssignmentApp(resolver service.AssignmentResolver) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/class-assignments", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		c.Locals("user_role", "admin")
		return c.Next()
	})
	handler.NewAssignmentHandler(resolver, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestAssignmentHandler_ResolveSuccess(t *testing.T) {
	resolver := &mockResolver{
		resolution: dto.ResolutionResponse{
			Assignment: dto.ClassAssignmentResponse{ID: 11, ClassLevel: "JHS_2", TeacherID: 4},
			Outcome:    service.ResolutionCreated,
			Warnings:   []string{"teacher Yaw Asante is not qualified for AR-FRE"},
		},
	}
	app := newAssignmentApp(resolver)

	payload := dto.ResolveClassAssignmentRequest{ClassLevel: "jhs_2", SubjectID: 3, AcademicYear: "2026/2027"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/class-assignments/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.ResolutionResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "class assignment resolved", response.Message)
	require.Equal(t, service.ResolutionCreated, response.Data.Outcome)
	require.Len(t, response.Data.Warnings, 1)

	require.Equal(t, payload, resolver.lastPayload)
	require.Equal(t, uint(7), resolver.lastActor.ID)
	require.Equal(t, "admin", resolver.lastActor.Role)
}

func TestAssignmentHandler_ResolveFailure(t *testing.T) {
	resolver := &mockResolver{err: service.ResolutionError{Reason: "no active teacher available"}}
	app := newAssignmentApp(resolver)

	body, err := json.Marshal(dto.ResolveClassAssignmentRequest{ClassLevel: "JHS_2", SubjectID: 3, AcademicYear: "2026/2027"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/class-assignments/resolve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAssignmentHandler_ResolveMalformedBody(t *testing.T) {
	resolver := &mockResolver{}
	app := newAssignmentApp(resolver)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/class-assignments/resolve", bytes.NewReader([]byte("nope")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Empty(t, resolver.lastPayload.ClassLevel)
}

func TestAssignmentHandler_ListParsesFilters(t *testing.T) {
	resolver := &mockResolver{
		list: dto.ClassAssignmentListResponse{
			Items:      []dto.ClassAssignmentResponse{{ID: 1}},
			Pagination: dto.PaginationMeta{Page: 1, PageSize: 20, TotalItems: 1, TotalPages: 1},
		},
	}
	app := newAssignmentApp(resolver)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/class-assignments?class_level=primary_4&subject_id=3&teacher_id=4&academic_year=2026/2027&active=true&page=1&page_size=20", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, "PRIMARY_4", resolver.lastList.ClassLevel)
	require.Equal(t, uint(3), resolver.lastList.SubjectID)
	require.Equal(t, uint(4), resolver.lastList.TeacherID)
	require.Equal(t, "2026/2027", resolver.lastList.AcademicYear)
	require.True(t, resolver.lastList.ActiveOnly)
	require.Equal(t, 1, resolver.lastList.Page)
	require.Equal(t, 20, resolver.lastList.PageSize)
}
