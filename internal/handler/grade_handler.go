package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/service"
	"github.com/kboateng/adesua-go-api/internal/utils"
)

// GradeHandler wires the grade mutation and query endpoints.
type GradeHandler struct {
	service service.GradeService
	logger  zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service: service,
		logger:  logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches grade endpoints to the router group.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Post("/:id/lock", h.lock)
	router.Delete("/:id/lock", h.unlock)
}

func (h *GradeHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.SubmitGrade(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to record grade")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "grade recorded", response)
}

func (h *GradeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.UpdateGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.UpdateGrade(c.UserContext(), id, payload, actorFromContext(c))
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to update grade")
	}

	return utils.SendSuccess(c, "grade updated", response)
}

func (h *GradeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grade, err := h.service.GetGrade(c.UserContext(), id)
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to retrieve grade")
	}

	return utils.SendSuccess(c, "grade retrieved", grade)
}

func (h *GradeHandler) list(c *fiber.Ctx) error {
	req, err := gradeListRequestFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.ListGrades(c.UserContext(), req)
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to list grades")
	}

	return utils.OK(c, response.Items, "grades retrieved", response.Pagination)
}

func (h *GradeHandler) lock(c *fiber.Ctx) error {
	return h.setLock(c, true)
}

func (h *GradeHandler) unlock(c *fiber.Ctx) error {
	return h.setLock(c, false)
}

func (h *GradeHandler) setLock(c *fiber.Ctx, locked bool) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	var grade dto.GradeResponse
	if locked {
		grade, err = h.service.LockGrade(c.UserContext(), id, actor)
	} else {
		grade, err = h.service.UnlockGrade(c.UserContext(), id, actor)
	}
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to change grade lock")
	}

	message := "grade locked"
	if !locked {
		message = "grade unlocked"
	}
	return utils.SendSuccess(c, message, grade)
}

func gradeListRequestFromQuery(c *fiber.Ctx) (dto.GradeListRequest, error) {
	req := dto.GradeListRequest{
		ClassLevel:   strings.ToUpper(strings.TrimSpace(c.Query("class_level"))),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
	}

	var err error
	if req.Page, err = parseQueryInt(c, "page"); err != nil {
		return req, err
	}
	if req.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return req, err
	}
	if req.StudentID, err = parseQueryUint(c, "student_id"); err != nil {
		return req, err
	}
	if req.SubjectID, err = parseQueryUint(c, "subject_id"); err != nil {
		return req, err
	}
	if req.Term, err = parseQueryInt(c, "term"); err != nil {
		return req, err
	}
	if raw := strings.TrimSpace(c.Query("requires_review")); raw != "" {
		flag := strings.EqualFold(raw, "true") || raw == "1"
		req.RequiresReview = &flag
	}
	return req, nil
}
