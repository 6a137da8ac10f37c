package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/config"
	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/handler"
	"github.com/kboateng/adesua-go-api/internal/middleware"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/repository"
	"github.com/kboateng/adesua-go-api/internal/router"
	"github.com/kboateng/adesua-go-api/internal/service"
)

func setupGradingApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Teacher{},
		&models.Subject{},
		&models.AcademicTerm{},
		&models.ClassAssignment{},
		&models.Grade{},
		&models.ReportCard{},
		&models.AuditEntry{},
	))

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	store := repository.NewStore(db)
	coordinator := service.NewAuditCoordinator(store.Audits, redisClient, nil, logger)
	resolver := service.NewAssignmentResolver(store, coordinator, validate, logger, true)
	gradeService := service.NewGradeService(store, resolver, coordinator, validate, logger, 20)
	reportService := service.NewReportService(store, redisClient, logger, time.Minute)
	termService := service.NewTermService(store, coordinator, validate, logger)
	auditService := service.NewAuditService(store.Audits, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		GradeHandler:      handler.NewGradeHandler(gradeService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(resolver, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		TermHandler:       handler.NewTermHandler(termService, logger),
		AuditHandler:      handler.NewAuditHandler(auditService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			role := c.Get("X-Test-Role")
			if role == "" {
				role = "teacher"
			}
			switch role {
			case "admin":
				c.Locals("user_id", uint(9001))
			case "teacher":
				c.Locals("user_id", uint(101))
				c.Locals("teacher_id", uint(1))
			default:
				c.Locals("user_id", uint(55))
			}
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app, db
}

func jsonRequest(t *testing.T, method, target, role string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-Role", role)
	return req
}

func decode[T any](t *testing.T, resp *http.Response, target *T) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target))
}

func TestGradingEndToEndFlow(t *testing.T) {
	app, db := setupGradingApp(t)

	student := models.Student{AdmissionNumber: "ADM-3001", FirstName: "Akosua", LastName: "Boateng", ClassLevel: models.ClassLevelJHS2}
	require.NoError(t, db.Create(&student).Error)
	subject := models.Subject{Code: "MATH", Name: "Mathematics"}
	require.NoError(t, db.Create(&subject).Error)
	teacher := models.Teacher{
		EmployeeID:  "EMP-2001",
		FirstName:   "Yaw",
		LastName:    "Asante",
		ClassLevels: []string{models.ClassLevelJHS1, models.ClassLevelJHS2},
	}
	require.NoError(t, db.Create(&teacher).Error)
	require.NoError(t, db.Model(&teacher).Association("Subjects").Append(&subject))

	// Step 1: teacher records a term 1 grade; resolution creates the assignment
	submitPayload := dto.SubmitGradeRequest{
		StudentID:      student.ID,
		SubjectID:      subject.ID,
		AcademicYear:   "2026/2027",
		Term:           1,
		ClassworkScore: 25,
		HomeworkScore:  8,
		TestScore:      9,
		ExamScore:      40,
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/grades", "teacher", submitPayload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submitted struct {
		Success bool                      `json:"success"`
		Data    dto.GradeMutationResponse `json:"data"`
	}
	decode(t, resp, &submitted)
	require.True(t, submitted.Success)
	require.Equal(t, "2 (A)", submitted.Data.Grade.DisplayGrade)
	require.True(t, submitted.Data.Grade.IsPassing)
	require.True(t, submitted.Data.SideEffects.AuditRecorded)
	require.True(t, submitted.Data.SideEffects.CachesInvalidated)
	require.Empty(t, submitted.Data.SideEffects.Degraded)
	gradeID := submitted.Data.Grade.ID

	var assignment models.ClassAssignment
	require.NoError(t, db.Where("class_level = ? AND subject_id = ?", models.ClassLevelJHS2, subject.ID).First(&assignment).Error)
	require.Equal(t, teacher.ID, assignment.TeacherID)

	// Step 2: the same scope cannot be recorded twice
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/grades", "teacher", submitPayload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Step 3: students cannot reach the grade surface
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/grades", "student", submitPayload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// Step 4: a large exam correction flags the grade for review
	exam := 10.0
	resp, err = app.Test(jsonRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/grades/%d", gradeID), "teacher", dto.UpdateGradeRequest{ExamScore: &exam}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated struct {
		Data dto.GradeMutationResponse `json:"data"`
	}
	decode(t, resp, &updated)
	require.NotNil(t, updated.Data.Grade.TotalScore)
	require.Equal(t, 52.0, *updated.Data.Grade.TotalScore)
	require.Equal(t, "5", updated.Data.Grade.GESGrade)
	require.Equal(t, "C+", updated.Data.Grade.LetterGrade)
	require.True(t, updated.Data.Grade.RequiresReview)

	// Step 5: admin locks the grade, further edits bounce
	resp, err = app.Test(jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/v1/grades/%d/lock", gradeID), "admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPatch, fmt.Sprintf("/api/v1/grades/%d", gradeID), "teacher", dto.UpdateGradeRequest{ExamScore: &exam}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// Step 6: the report card aggregates the term, then serves from cache
	reportTarget := fmt.Sprintf("/api/v1/reports/students/%d?academic_year=2026/2027&term=1", student.ID)
	resp, err = app.Test(jsonRequest(t, http.MethodGet, reportTarget, "student", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report struct {
		Data dto.ReportCardResponse `json:"data"`
	}
	decode(t, resp, &report)
	require.Equal(t, "Akosua Boateng", report.Data.StudentName)
	require.Equal(t, 52.0, report.Data.AverageScore)
	require.Equal(t, "C+", report.Data.OverallGrade)
	require.Len(t, report.Data.Subjects, 1)
	require.Equal(t, "5", report.Data.Subjects[0].GESGrade)
	require.False(t, report.Data.CacheHit)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, reportTarget, "student", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &report)
	require.True(t, report.Data.CacheHit)

	// Step 7: class summary over the same scope
	summaryTarget := fmt.Sprintf("/api/v1/reports/class-summary?subject_id=%d&class_level=jhs_2&academic_year=2026/2027&term=1", subject.ID)
	resp, err = app.Test(jsonRequest(t, http.MethodGet, summaryTarget, "teacher", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary struct {
		Data dto.ClassSummaryResponse `json:"data"`
	}
	decode(t, resp, &summary)
	require.Equal(t, int64(1), summary.Data.GradeCount)
	require.Equal(t, 52.0, summary.Data.AverageScore)
	require.Equal(t, 100.0, summary.Data.PassingRate)
	require.Equal(t, map[string]int64{"5": 1}, summary.Data.GradeDistribution)

	// Step 8: locking a term blocks entry until it is reopened
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/terms/lock", "admin", dto.TermLockRequest{AcademicYear: "2026/2027", Term: 2}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	termTwo := submitPayload
	termTwo.Term = 2
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/grades", "teacher", termTwo))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/terms/lock", "admin", dto.TermLockRequest{AcademicYear: "2026/2027", Term: 2}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/grades", "teacher", termTwo))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Step 9: the audit trail recorded every mutation
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/audit?page_size=50", "admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var audit struct {
		Data []dto.AuditEntryResponse `json:"data"`
		Meta dto.PaginationMeta       `json:"meta"`
	}
	decode(t, resp, &audit)
	require.Equal(t, int64(7), audit.Meta.TotalItems)

	actions := map[string]int{}
	entities := map[string]int{}
	for _, entry := range audit.Data {
		actions[entry.Action]++
		entities[entry.EntityType]++
	}
	require.Equal(t, map[string]int{"CREATE": 4, "UPDATE": 3}, actions)
	require.Equal(t, map[string]int{"grade": 4, "class_assignment": 1, "academic_term": 2}, entities)

	// Step 10: the audit trail is admin-only
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/audit", "teacher", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGradingEndToEndSyntheticPlaceholder(t *testing.T) {
	app, db := setupGradingApp(t)

	student := models.Student{AdmissionNumber: "ADM-3002", FirstName: "Kwame", LastName: "Mensah", ClassLevel: models.ClassLevelPrimary5}
	require.NoError(t, db.Create(&student).Error)
	subject := models.Subject{Code: "FRE", Name: "French"}
	require.NoError(t, db.Create(&subject).Error)

	// No teacher exists at all, so resolution synthesizes a placeholder.
	payload := dto.SubmitGradeRequest{
		StudentID:      student.ID,
		SubjectID:      subject.ID,
		AcademicYear:   "2026/2027",
		Term:           1,
		ClassworkScore: 20,
		HomeworkScore:  5,
		TestScore:      5,
		ExamScore:      30,
	}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/grades", "admin", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var placeholder models.Teacher
	require.NoError(t, db.Where("is_synthetic = ?", true).First(&placeholder).Error)
	require.True(t, strings.HasPrefix(placeholder.EmployeeID, "TEMP-"))
	require.Equal(t, "Unassigned Teacher", placeholder.FullName())

	var assignment models.ClassAssignment
	require.NoError(t, db.Where("subject_id = ?", subject.ID).First(&assignment).Error)
	require.Equal(t, placeholder.ID, assignment.TeacherID)
}
