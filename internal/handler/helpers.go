package handler

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kboateng/adesua-go-api/internal/grading"
	"github.com/kboateng/adesua-go-api/internal/middleware"
	"github.com/kboateng/adesua-go-api/internal/service"
	"github.com/kboateng/adesua-go-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func teacherIDFromContext(c *fiber.Ctx) *uint {
	if v := c.Locals("teacher_id"); v != nil {
		if id, ok := v.(uint); ok && id > 0 {
			return &id
		}
	}
	return nil
}

func actorFromContext(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:        userIDFromContext(c),
		Role:      userRoleFromContext(c),
		TeacherID: teacherIDFromContext(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// validationDetails flattens struct-tag validation failures into the
// field-keyed map the response envelope carries.
func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[snakeCase(fieldErr.Field())] = "failed " + fieldErr.Tag() + " validation"
	}
	return details
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 && (i+1 == len(name) || !unicode.IsUpper(rune(name[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}

// sendEngineError maps the engine's error taxonomy onto the HTTP surface:
// score and payload violations come back field-keyed for form redisplay,
// rule rejections carry their reason, and resolution failures surface a
// generic message plus the correlation id for operator follow-up.
func sendEngineError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var (
		scoreErr      *grading.ValidationError
		fieldErrs     validator.ValidationErrors
		inactiveErr   service.InactiveEntityError
		resolutionErr service.ResolutionError
	)
	switch {
	// Resolution failures match first: a malformed resolution key wraps
	// its field map and must not surface as a plain score rejection.
	case errors.As(err, &resolutionErr):
		requestLogger(logger, c).Error().Err(err).Msg("assignment resolution failed")
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "could not establish teaching context",
			map[string]string{"correlation_id": middleware.GetCorrelationID(c)})
	case errors.As(err, &scoreErr):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid scores", scoreErr.Fields)
	case errors.As(err, &fieldErrs):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", validationDetails(fieldErrs))
	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrTeacherNotFound),
		errors.Is(err, service.ErrGradeNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrTermNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateGrade),
		errors.Is(err, service.ErrGradeLocked),
		errors.Is(err, service.ErrTermLocked):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &inactiveErr):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, inactiveErr.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
