package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/service"
	"github.com/kboateng/adesua-go-api/internal/utils"
)

// AssignmentHandler wires the class-assignment resolution endpoints.
type AssignmentHandler struct {
	resolver service.AssignmentResolver
	logger   zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(resolver service.AssignmentResolver, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		resolver: resolver,
		logger:   logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches class-assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Post("/resolve", h.resolve)
	router.Get("", h.list)
}

func (h *AssignmentHandler) resolve(c *fiber.Ctx) error {
	var payload dto.ResolveClassAssignmentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.resolver.ResolveClassAssignment(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to resolve class assignment")
	}

	return utils.SendSuccess(c, "class assignment resolved", response)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	req := dto.ClassAssignmentListRequest{
		ClassLevel:   strings.ToUpper(strings.TrimSpace(c.Query("class_level"))),
		AcademicYear: strings.TrimSpace(c.Query("academic_year")),
		ActiveOnly:   strings.EqualFold(strings.TrimSpace(c.Query("active")), "true"),
	}

	var err error
	if req.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if req.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if req.SubjectID, err = parseQueryUint(c, "subject_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if req.TeacherID, err = parseQueryUint(c, "teacher_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.resolver.List(c.UserContext(), req)
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to list class assignments")
	}

	return utils.OK(c, response.Items, "class assignments retrieved", response.Pagination)
}
