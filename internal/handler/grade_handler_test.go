package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/grading"
	"github.com/kboateng/adesua-go-api/internal/handler"
	"github.com/kboateng/adesua-go-api/internal/service"
)

type mockGradeService struct {
	mutation dto.GradeMutationResponse
	grade    dto.GradeResponse
	list     dto.GradeListResponse
	err      error

	lastSubmit  dto.SubmitGradeRequest
	lastUpdate  dto.UpdateGradeRequest
	lastList    dto.GradeListRequest
	lastGradeID uint
	lastActor   service.Actor
}

func (m *mockGradeService) SubmitGrade(_ context.Context, payload dto.SubmitGradeRequest, actor service.Actor) (dto.GradeMutationResponse, error) {
	m.lastSubmit = payload
	m.lastActor = actor
	if m.err != nil {
		return dto.GradeMutationResponse{}, m.err
	}
	return m.mutation, nil
}

func (m *mockGradeService) UpdateGrade(_ context.Context, gradeID uint, payload dto.UpdateGradeRequest, actor service.Actor) (dto.GradeMutationResponse, error) {
	m.lastGradeID = gradeID
	m.lastUpdate = payload
	m.lastActor = actor
	if m.err != nil {
		return dto.GradeMutationResponse{}, m.err
	}
	return m.mutation, nil
}

func (m *mockGradeService) GetGrade(_ context.Context, gradeID uint) (dto.GradeResponse, error) {
	m.lastGradeID = gradeID
	if m.err != nil {
		return dto.GradeResponse{}, m.err
	}
	return m.grade, nil
}

func (m *mockGradeService) ListGrades(_ context.Context, req dto.GradeListRequest) (dto.GradeListResponse, error) {
	m.lastList = req
	if m.err != nil {
		return dto.GradeListResponse{}, m.err
	}
	return m.list, nil
}

func (m *mockGradeService) LockGrade(_ context.Context, gradeID uint, actor service.Actor) (dto.GradeResponse, error) {
	m.lastGradeID = gradeID
	m.lastActor = actor
	if m.err != nil {
		return dto.GradeResponse{}, m.err
	}
	return m.grade, nil
}

func (m *mockGradeService) UnlockGrade(_ context.Context, gradeID uint, actor service.Actor) (dto.GradeResponse, error) {
	m.lastGradeID = gradeID
	m.lastActor = actor
	if m.err != nil {
		return dto.GradeResponse{}, m.err
	}
	return m.grade, nil
}

func newGradeApp(svc service.GradeService) *fiber.App {
	app := fiber.New()
	teacherID := uint(9)
	group := app.Group("/api/v1/grades", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		c.Locals("user_role", "teacher")
		c.Locals("teacher_id", teacherID)
		return c.Next()
	})
	handler.NewGradeHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestGradeHandler_SubmitSuccess(t *testing.T) {
	total := 82.0
	svc := &mockGradeService{
		mutation: dto.GradeMutationResponse{
			Grade: dto.GradeResponse{
				ID:           7,
				StudentID:    1,
				SubjectID:    2,
				TotalScore:   &total,
				GESGrade:     "2",
				LetterGrade:  "A",
				DisplayGrade: "2 (A)",
			},
			SideEffects: dto.SideEffectsResponse{AuditRecorded: true, CachesInvalidated: true},
		},
	}
	app := newGradeApp(svc)

	payload := dto.SubmitGradeRequest{
		StudentID:      1,
		SubjectID:      2,
		AcademicYear:   "2026/2027",
		Term:           1,
		ClassworkScore: 25,
		HomeworkScore:  8,
		TestScore:      9,
		ExamScore:      40,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                      `json:"success"`
		Data    dto.GradeMutationResponse `json:"data"`
		Message string                    `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "grade recorded", response.Message)
	require.Equal(t, "2 (A)", response.Data.Grade.DisplayGrade)
	require.True(t, response.Data.SideEffects.AuditRecorded)

	require.Equal(t, payload, svc.lastSubmit)
	require.Equal(t, uint(42), svc.lastActor.ID)
	require.Equal(t, "teacher", svc.lastActor.Role)
	require.NotNil(t, svc.lastActor.TeacherID)
	require.Equal(t, uint(9), *svc.lastActor.TeacherID)
}

func TestGradeHandler_SubmitScoreViolations(t *testing.T) {
	svc := &mockGradeService{
		err: &grading.ValidationError{Fields: map[string]string{
			"exam_score":    "exam score must be between 0 and 50",
			"academic_year": "academic year must use the YYYY/YYYY format",
		}},
	}
	app := newGradeApp(svc)

	body, err := json.Marshal(dto.SubmitGradeRequest{StudentID: 1, SubjectID: 2})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	decodeResponse(t, resp, &response)

	require.False(t, response.Success)
	require.Equal(t, "invalid scores", response.Message)
	require.Len(t, response.Details, 2)
	require.Contains(t, response.Details, "exam_score")
	require.Contains(t, response.Details, "academic_year")
}

func TestGradeHandler_SubmitMalformedBody(t *testing.T) {
	svc := &mockGradeService{}
	app := newGradeApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Zero(t, svc.lastSubmit.StudentID)
}

func TestGradeHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "duplicate", err: service.ErrDuplicateGrade, statusCode: fiber.StatusConflict},
		{name: "grade locked", err: service.ErrGradeLocked, statusCode: fiber.StatusConflict},
		{name: "term locked", err: service.ErrTermLocked, statusCode: fiber.StatusConflict},
		{name: "student missing", err: service.ErrStudentNotFound, statusCode: fiber.StatusNotFound},
		{name: "subject missing", err: service.ErrSubjectNotFound, statusCode: fiber.StatusNotFound},
		{name: "inactive student", err: service.InactiveEntityError{Entity: "student"}, statusCode: fiber.StatusUnprocessableEntity},
		{name: "unresolved assignment", err: service.ResolutionError{Reason: "no active teacher available"}, statusCode: fiber.StatusUnprocessableEntity},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockGradeService{err: tc.err}
			app := newGradeApp(svc)

			body, err := json.Marshal(dto.SubmitGradeRequest{StudentID: 1, SubjectID: 2, AcademicYear: "2026/2027", Term: 1})
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestGradeHandler_ResolutionFailureHidesInternals(t *testing.T) {
	svc := &mockGradeService{err: service.ResolutionError{Reason: "no active teacher available"}}
	app := newGradeApp(svc)

	body, err := json.Marshal(dto.SubmitGradeRequest{StudentID: 1, SubjectID: 2, AcademicYear: "2026/2027", Term: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var response struct {
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	}
	decodeResponse(t, resp, &response)

	require.Equal(t, "could not establish teaching context", response.Message)
	require.NotContains(t, response.Message, "no active teacher")
	require.Contains(t, response.Details, "correlation_id")
}

func TestGradeHandler_UpdateForwardsIDAndPayload(t *testing.T) {
	svc := &mockGradeService{mutation: dto.GradeMutationResponse{Grade: dto.GradeResponse{ID: 7}}}
	app := newGradeApp(svc)

	exam := 35.0
	body, err := json.Marshal(dto.UpdateGradeRequest{ExamScore: &exam})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/grades/7", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.Equal(t, "grade updated", response.Message)
	require.Equal(t, uint(7), svc.lastGradeID)
	require.NotNil(t, svc.lastUpdate.ExamScore)
	require.Equal(t, 35.0, *svc.lastUpdate.ExamScore)
}

func TestGradeHandler_InvalidIdentifier(t *testing.T) {
	svc := &mockGradeService{}
	app := newGradeApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/grades/abc", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGradeHandler_ListParsesFilters(t *testing.T) {
	svc := &mockGradeService{
		list: dto.GradeListResponse{
			Items:      []dto.GradeResponse{{ID: 1}, {ID: 2}},
			Pagination: dto.PaginationMeta{Page: 2, PageSize: 10, TotalItems: 12, TotalPages: 2},
		},
	}
	app := newGradeApp(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/grades?page=2&page_size=10&student_id=5&class_level=jhs_2&academic_year=2026/2027&term=1&requires_review=true", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    []dto.GradeResponse `json:"data"`
		Meta    dto.PaginationMeta  `json:"meta"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Len(t, response.Data, 2)
	require.Equal(t, int64(12), response.Meta.TotalItems)

	require.Equal(t, 2, svc.lastList.Page)
	require.Equal(t, 10, svc.lastList.PageSize)
	require.Equal(t, uint(5), svc.lastList.StudentID)
	require.Equal(t, "JHS_2", svc.lastList.ClassLevel)
	require.Equal(t, "2026/2027", svc.lastList.AcademicYear)
	require.Equal(t, 1, svc.lastList.Term)
	require.NotNil(t, svc.lastList.RequiresReview)
	require.True(t, *svc.lastList.RequiresReview)
}

func TestGradeHandler_ListRejectsBadQuery(t *testing.T) {
	svc := &mockGradeService{}
	app := newGradeApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/grades?page=abc", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGradeHandler_LockRoundTrip(t *testing.T) {
	svc := &mockGradeService{grade: dto.GradeResponse{ID: 3, IsLocked: true}}
	app := newGradeApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades/3/lock", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var locked struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &locked)
	require.Equal(t, "grade locked", locked.Message)
	require.Equal(t, uint(3), svc.lastGradeID)
	require.Equal(t, uint(42), svc.lastActor.ID)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/grades/3/lock", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var unlocked struct {
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &unlocked)
	require.Equal(t, "grade unlocked", unlocked.Message)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}
