package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/service"
	"github.com/kboateng/adesua-go-api/internal/utils"
)

// TermHandler exposes academic term lock administration.
type TermHandler struct {
	service service.TermService
	logger  zerolog.Logger
}

// NewTermHandler constructs the handler.
func NewTermHandler(service service.TermService, logger zerolog.Logger) *TermHandler {
	return &TermHandler{
		service: service,
		logger:  logger.With().Str("component", "term_handler").Logger(),
	}
}

// Register attaches term administration endpoints to the router group.
func (h *TermHandler) Register(router fiber.Router) {
	router.Post("/lock", h.lock)
	router.Delete("/lock", h.unlock)
}

func (h *TermHandler) lock(c *fiber.Ctx) error {
	var payload dto.TermLockRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.LockTerm(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to lock term")
	}

	return utils.SendSuccess(c, "term locked", response)
}

func (h *TermHandler) unlock(c *fiber.Ctx) error {
	var payload dto.TermLockRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.UnlockTerm(c.UserContext(), payload, actorFromContext(c))
	if err != nil {
		return sendEngineError(c, h.logger, err, "failed to unlock term")
	}

	return utils.SendSuccess(c, "term unlocked", response)
}
