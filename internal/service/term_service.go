package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/repository"
)

// TermService administers the term locks that close a reporting period
// against further grade entry.
type TermService interface {
	LockTerm(ctx context.Context, payload dto.TermLockRequest, actor Actor) (dto.TermResponse, error)
	UnlockTerm(ctx context.Context, payload dto.TermLockRequest, actor Actor) (dto.TermResponse, error)
}

type termService struct {
	store       *repository.Store
	coordinator AuditCoordinator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewTermService constructs the term service.
func NewTermService(store *repository.Store, coordinator AuditCoordinator, validator *validator.Validate, logger zerolog.Logger) TermService {
	return &termService{
		store:       store,
		coordinator: coordinator,
		validator:   validator,
		logger:      logger.With().Str("component", "term_service").Logger(),
	}
}

func (s *termService) LockTerm(ctx context.Context, payload dto.TermLockRequest, actor Actor) (dto.TermResponse, error) {
	return s.setTermLock(ctx, payload, actor, true)
}

func (s *termService) UnlockTerm(ctx context.Context, payload dto.TermLockRequest, actor Actor) (dto.TermResponse, error) {
	return s.setTermLock(ctx, payload, actor, false)
}

func (s *termService) setTermLock(ctx context.Context, payload dto.TermLockRequest, actor Actor, locked bool) (dto.TermResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TermResponse{}, err
	}
	if !models.ValidAcademicYear(payload.AcademicYear) {
		return dto.TermResponse{}, ErrTermNotFound
	}

	var (
		term      models.AcademicTerm
		created   bool
		unchanged bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Terms.FindByYearTerm(ctx, payload.AcademicYear, payload.Term)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// An unregistered term is open; locking registers it. Unlocking
			// has nothing to act on.
			if !locked {
				return ErrTermNotFound
			}
			start, end := defaultTermWindow(payload.AcademicYear, payload.Term)
			current = models.AcademicTerm{
				AcademicYear: payload.AcademicYear,
				Term:         payload.Term,
				StartDate:    start,
				EndDate:      end,
				IsLocked:     true,
			}
			if err := tx.Terms.Create(ctx, &current); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					current, err = tx.Terms.FindByYearTerm(ctx, payload.AcademicYear, payload.Term)
					if err != nil {
						return err
					}
				} else {
					return err
				}
			} else {
				created = true
				term = current
				return nil
			}
		}

		if current.IsLocked == locked {
			unchanged = true
			term = current
			return nil
		}
		current.IsLocked = locked
		if err := tx.Terms.Update(ctx, &current); err != nil {
			return err
		}
		term = current
		return nil
	})
	if err != nil {
		return dto.TermResponse{}, err
	}

	if !unchanged {
		action := models.AuditActionUpdate
		if created {
			action = models.AuditActionCreate
		}
		s.coordinator.Record(ctx, AuditEvent{
			Actor:      actor,
			Action:     action,
			EntityType: "academic_term",
			EntityID:   &term.ID,
			Changes: map[string]interface{}{
				"is_locked": map[string]interface{}{"from": !locked, "to": locked},
			},
		})
		s.logger.Info().
			Str("term", term.Label()).
			Bool("locked", locked).
			Msg("term lock changed")
	}

	return dto.NewTermResponse(term), nil
}

// defaultTermWindow approximates the Ghanaian school calendar when a term is
// registered through a lock rather than by an administrator: first term
// September to December, second January to April, third May to August.
func defaultTermWindow(academicYear string, term int) (time.Time, time.Time) {
	firstYear, secondYear := models.AcademicYearBounds(academicYear)
	switch term {
	case models.FirstTerm:
		return time.Date(firstYear, time.September, 1, 0, 0, 0, 0, time.UTC),
			time.Date(firstYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	case models.SecondTerm:
		return time.Date(secondYear, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(secondYear, time.April, 30, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(secondYear, time.May, 1, 0, 0, 0, 0, time.UTC),
			time.Date(secondYear, time.August, 31, 0, 0, 0, 0, time.UTC)
	}
}
