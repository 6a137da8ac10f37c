package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kboateng/adesua-go-api/internal/middleware"
	"github.com/kboateng/adesua-go-api/internal/service"
	"github.com/kboateng/adesua-go-api/internal/utils"
)

// ReportHandler serves report cards and class summaries.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register attaches reporting endpoints to the router group. Report cards are
// readable by any authenticated user; class-wide aggregates stay staff-only.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/students/:id", middleware.WithAuth(h.reportCard, middleware.AuthOptions{Role: middleware.AuthRoleAny}))
	router.Get("/class-summary", middleware.WithAuth(h.classSummary, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))
}

func (h *ReportHandler) reportCard(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	academicYear := strings.TrimSpace(c.Query("academic_year"))
	term, err := parseQueryInt(c, "term")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.GetReportCard(c.UserContext(), studentID, academicYear, term)
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to build report card")
	}

	return utils.SendSuccess(c, "report card retrieved", response)
}

func (h *ReportHandler) classSummary(c *fiber.Ctx) error {
	subjectID, err := parseQueryUint(c, "subject_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	term, err := parseQueryInt(c, "term")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	classLevel := strings.ToUpper(strings.TrimSpace(c.Query("class_level")))
	academicYear := strings.TrimSpace(c.Query("academic_year"))

	response, err := h.service.GetClassSummary(c.UserContext(), subjectID, classLevel, academicYear, term)
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to build class summary")
	}

	return utils.SendSuccess(c, "class summary retrieved", response)
}
