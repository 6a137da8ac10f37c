package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
	// ErrSeedInvalidPayload indicates the roster payload failed validation.
	ErrSeedInvalidPayload = errors.New("invalid seed payload")
)

// SeedService loads fixture rosters into a development environment. Rows are
// keyed by their natural identifiers (admission number, subject code, employee
// id), so re-running a seed refreshes the roster instead of duplicating it.
type SeedService interface {
	SeedRoster(ctx context.Context, token string, payload dto.RosterSeedRequest) (dto.RosterSeedResponse, error)
}

type seedService struct {
	store   *repository.Store
	enabled bool
	token   string
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(store *repository.Store, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		store:   store,
		enabled: enabled,
		token:   token,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedRoster(ctx context.Context, token string, payload dto.RosterSeedRequest) (dto.RosterSeedResponse, error) {
	if !s.enabled {
		return dto.RosterSeedResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.RosterSeedResponse{}, ErrSeedUnauthorized
	}

	students, err := normalizeSeedStudents(payload.Students)
	if err != nil {
		return dto.RosterSeedResponse{}, err
	}
	subjects := normalizeSeedSubjects(payload.Subjects)
	teachers, err := normalizeSeedTeachers(payload.Teachers)
	if err != nil {
		return dto.RosterSeedResponse{}, err
	}

	var out dto.RosterSeedResponse
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var txErr error
		if out.SubjectsAffected, txErr = tx.Subjects.UpsertBatch(ctx, subjects); txErr != nil {
			return fmt.Errorf("seed subjects: %w", txErr)
		}
		if out.StudentsAffected, txErr = tx.Students.UpsertBatch(ctx, students); txErr != nil {
			return fmt.Errorf("seed students: %w", txErr)
		}
		rows := make([]models.Teacher, len(teachers))
		for i := range teachers {
			rows[i] = teachers[i].Teacher
		}
		if out.TeachersAffected, txErr = tx.Teachers.UpsertBatch(ctx, rows); txErr != nil {
			return fmt.Errorf("seed teachers: %w", txErr)
		}
		return s.linkTeacherSubjects(ctx, tx, teachers)
	})
	if err != nil {
		return dto.RosterSeedResponse{}, err
	}

	s.logger.Info().
		Int64("students", out.StudentsAffected).
		Int64("subjects", out.SubjectsAffected).
		Int64("teachers", out.TeachersAffected).
		Msg("roster seeded")
	return out, nil
}

// linkTeacherSubjects resolves each teacher's subject codes against the rows
// written earlier in the same transaction and rewrites the qualification set.
// Teachers without a subject_codes key keep whatever links they already have.
func (s *seedService) linkTeacherSubjects(ctx context.Context, tx *repository.Store, teachers []dto.TeacherSeed) error {
	for i := range teachers {
		if teachers[i].SubjectCodes == nil {
			continue
		}
		stored, err := tx.Teachers.GetByEmployeeID(ctx, teachers[i].EmployeeID)
		if err != nil {
			return fmt.Errorf("seed teacher %s: %w", teachers[i].EmployeeID, err)
		}
		subjects, err := tx.Subjects.ListByCodes(ctx, teachers[i].SubjectCodes)
		if err != nil {
			return fmt.Errorf("seed teacher %s subjects: %w", teachers[i].EmployeeID, err)
		}
		if len(subjects) != len(teachers[i].SubjectCodes) {
			return fmt.Errorf("%w: teacher %s references an unknown subject code", ErrSeedInvalidPayload, teachers[i].EmployeeID)
		}
		if err := tx.Teachers.ReplaceSubjects(ctx, &stored, subjects); err != nil {
			return fmt.Errorf("seed teacher %s subjects: %w", teachers[i].EmployeeID, err)
		}
	}
	return nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtleConstantTimeCompare(expected, strings.TrimSpace(token))
}

func subtleConstantTimeCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}

func normalizeSeedStudents(items []models.Student) ([]models.Student, error) {
	for i := range items {
		items[i].ID = 0
		items[i].AdmissionNumber = strings.TrimSpace(items[i].AdmissionNumber)
		items[i].ClassLevel = strings.ToUpper(strings.TrimSpace(items[i].ClassLevel))
		if items[i].AdmissionNumber == "" {
			return nil, fmt.Errorf("%w: student %s %s has no admission number", ErrSeedInvalidPayload, items[i].FirstName, items[i].LastName)
		}
		if !models.ValidClassLevel(items[i].ClassLevel) {
			return nil, fmt.Errorf("%w: student %s has unknown class level %q", ErrSeedInvalidPayload, items[i].AdmissionNumber, items[i].ClassLevel)
		}
	}
	return items, nil
}

func normalizeSeedSubjects(items []models.Subject) []models.Subject {
	for i := range items {
		items[i].ID = 0
		items[i].Code = strings.ToUpper(strings.TrimSpace(items[i].Code))
	}
	return items
}

func normalizeSeedTeachers(items []dto.TeacherSeed) ([]dto.TeacherSeed, error) {
	for i := range items {
		items[i].ID = 0
		items[i].EmployeeID = strings.TrimSpace(items[i].EmployeeID)
		if items[i].EmployeeID == "" {
			return nil, fmt.Errorf("%w: teacher %s %s has no employee id", ErrSeedInvalidPayload, items[i].FirstName, items[i].LastName)
		}
		for j, level := range items[i].ClassLevels {
			level = strings.ToUpper(strings.TrimSpace(level))
			if !models.ValidClassLevel(level) {
				return nil, fmt.Errorf("%w: teacher %s has unknown class level %q", ErrSeedInvalidPayload, items[i].EmployeeID, level)
			}
			items[i].ClassLevels[j] = level
		}
		for j, code := range items[i].SubjectCodes {
			items[i].SubjectCodes[j] = strings.ToUpper(strings.TrimSpace(code))
		}
		// The association rows are rewritten from subject codes; never let a
		// raw payload smuggle subject structs into the batch insert.
		items[i].Subjects = nil
	}
	return items, nil
}
