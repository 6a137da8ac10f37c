package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/grading"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/observability"
	"github.com/kboateng/adesua-go-api/internal/repository"
)

// GradeService orchestrates grade mutations: score validation, business
// rules, assignment resolution, classification and persistence run in one
// transaction; the audit trail and cache invalidation follow the commit.
type GradeService interface {
	SubmitGrade(ctx context.Context, payload dto.SubmitGradeRequest, actor Actor) (dto.GradeMutationResponse, error)
	UpdateGrade(ctx context.Context, gradeID uint, payload dto.UpdateGradeRequest, actor Actor) (dto.GradeMutationResponse, error)
	GetGrade(ctx context.Context, gradeID uint) (dto.GradeResponse, error)
	ListGrades(ctx context.Context, req dto.GradeListRequest) (dto.GradeListResponse, error)
	LockGrade(ctx context.Context, gradeID uint, actor Actor) (dto.GradeResponse, error)
	UnlockGrade(ctx context.Context, gradeID uint, actor Actor) (dto.GradeResponse, error)
}

type gradeService struct {
	store           *repository.Store
	resolver        AssignmentResolver
	coordinator     AuditCoordinator
	validator       *validator.Validate
	sanitizer       *bluemonday.Policy
	logger          zerolog.Logger
	reviewThreshold float64
}

// NewGradeService constructs the grade orchestrator. Updates moving any
// score component by more than reviewThreshold points are flagged for review.
func NewGradeService(store *repository.Store, resolver AssignmentResolver, coordinator AuditCoordinator, validator *validator.Validate, logger zerolog.Logger, reviewThreshold float64) GradeService {
	return &gradeService{
		store:           store,
		resolver:        resolver,
		coordinator:     coordinator,
		validator:       validator,
		sanitizer:       bluemonday.StrictPolicy(),
		logger:          logger.With().Str("component", "grade_service").Logger(),
		reviewThreshold: reviewThreshold,
	}
}

func (s *gradeService) SubmitGrade(ctx context.Context, payload dto.SubmitGradeRequest, actor Actor) (dto.GradeMutationResponse, error) {
	tracer := otel.Tracer("github.com/kboateng/adesua-go-api/internal/service/grade")
	ctx, span := tracer.Start(ctx, "grades.submit")
	span.SetAttributes(
		attribute.Int64("grade.student_id", int64(payload.StudentID)),
		attribute.Int64("grade.subject_id", int64(payload.SubjectID)),
		attribute.Int("grade.term", payload.Term),
		attribute.Int64("grade.actor_id", int64(actor.ID)),
	)
	defer span.End()
	defer observeMutation("submit", time.Now())

	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeMutationResponse{}, s.reject(span, "submit", "validation_failed", err)
	}

	scores := grading.Scores{
		Classwork: payload.ClassworkScore,
		Homework:  payload.HomeworkScore,
		Test:      payload.TestScore,
		Exam:      payload.ExamScore,
	}
	academicYear := strings.TrimSpace(payload.AcademicYear)
	if err := grading.Validate(scores, academicYear, payload.Term); err != nil {
		return dto.GradeMutationResponse{}, s.reject(span, "submit", "score_validation_failed", err)
	}

	var (
		grade      models.Grade
		resolution Resolution
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		student, err := tx.Students.GetByID(ctx, payload.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}
		if !student.IsActive {
			return InactiveEntityError{Entity: "student"}
		}

		subject, err := tx.Subjects.GetByID(ctx, payload.SubjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubjectNotFound
			}
			return err
		}
		if !subject.IsActive {
			return InactiveEntityError{Entity: "subject"}
		}

		if err := s.checkTermOpen(ctx, tx, academicYear, payload.Term); err != nil {
			return err
		}

		if _, err := tx.Grades.FindByScope(ctx, payload.StudentID, payload.SubjectID, academicYear, payload.Term); err == nil {
			return ErrDuplicateGrade
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		resolution, err = s.resolver.Resolve(ctx, tx, ResolutionKey{
			ClassLevel:      student.ClassLevel,
			SubjectID:       payload.SubjectID,
			AcademicYear:    academicYear,
			ActingTeacherID: actor.TeacherID,
		})
		if err != nil {
			return err
		}

		total := grading.Total(scores)
		gesGrade, letterGrade := grading.Classify(&total)

		recordedBy := actor.ID
		grade = models.Grade{
			StudentID:         student.ID,
			SubjectID:         subject.ID,
			ClassAssignmentID: &resolution.Assignment.ID,
			ClassLevel:        student.ClassLevel,
			AcademicYear:      academicYear,
			Term:              payload.Term,
			ClassworkScore:    grading.Quantize(scores.Classwork),
			HomeworkScore:     grading.Quantize(scores.Homework),
			TestScore:         grading.Quantize(scores.Test),
			ExamScore:         grading.Quantize(scores.Exam),
			TotalScore:        &total,
			GESGrade:          gesGrade,
			LetterGrade:       letterGrade,
			Remarks:           s.sanitize(payload.Remarks),
			RecordedByID:      &recordedBy,
			RecordedByRole:    normalizeActorRole(actor.Role),
		}
		if err := tx.Grades.Create(ctx, &grade); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateGrade
			}
			return err
		}
		grade.Student = student
		grade.Subject = subject
		return nil
	})
	if err != nil {
		return dto.GradeMutationResponse{}, s.reject(span, "submit", "submission_failed", err)
	}

	sideEffects := s.coordinator.Record(ctx, AuditEvent{
		Actor:      actor,
		Action:     models.AuditActionCreate,
		EntityType: "grade",
		EntityID:   &grade.ID,
		Changes:    GradeChanges(nil, grade),
		Grade:      &grade,
	})
	for _, event := range resolutionAuditEvents(resolution, actor) {
		sideEffects = sideEffects.merge(s.coordinator.Record(ctx, event))
	}

	span.SetAttributes(
		attribute.Float64("grade.total", floatOrZero(grade.TotalScore)),
		attribute.String("grade.ges", grade.GESGrade),
		attribute.String("assignment.outcome", resolution.Outcome),
	)
	observability.GradeMutations().WithLabelValues("submit", "ok").Inc()
	s.logger.Info().
		Uint("grade_id", grade.ID).
		Uint("student_id", grade.StudentID).
		Uint("subject_id", grade.SubjectID).
		Str("ges_grade", grade.GESGrade).
		Str("resolution", resolution.Outcome).
		Msg("grade recorded")

	return dto.GradeMutationResponse{
		Grade:       dto.NewGradeResponse(grade),
		SideEffects: sideEffectsToDTO(sideEffects),
	}, nil
}

func (s *gradeService) UpdateGrade(ctx context.Context, gradeID uint, payload dto.UpdateGradeRequest, actor Actor) (dto.GradeMutationResponse, error) {
	tracer := otel.Tracer("github.com/kboateng/adesua-go-api/internal/service/grade")
	ctx, span := tracer.Start(ctx, "grades.update")
	span.SetAttributes(
		attribute.Int64("grade.id", int64(gradeID)),
		attribute.Int64("grade.actor_id", int64(actor.ID)),
	)
	defer span.End()
	defer observeMutation("update", time.Now())

	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeMutationResponse{}, s.reject(span, "update", "validation_failed", err)
	}

	var (
		before    models.Grade
		after     models.Grade
		unchanged bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Grades.GetByID(ctx, gradeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGradeNotFound
			}
			return err
		}

		if current.Student.ID != 0 && !current.Student.IsActive {
			return InactiveEntityError{Entity: "student"}
		}
		if current.Subject.ID != 0 && !current.Subject.IsActive {
			return InactiveEntityError{Entity: "subject"}
		}
		if err := s.checkTermOpen(ctx, tx, current.AcademicYear, current.Term); err != nil {
			return err
		}
		if current.IsLocked {
			return ErrGradeLocked
		}

		before = current
		scores := grading.Scores{
			Classwork: current.ClassworkScore,
			Homework:  current.HomeworkScore,
			Test:      current.TestScore,
			Exam:      current.ExamScore,
		}
		if payload.ClassworkScore != nil {
			scores.Classwork = *payload.ClassworkScore
		}
		if payload.HomeworkScore != nil {
			scores.Homework = *payload.HomeworkScore
		}
		if payload.TestScore != nil {
			scores.Test = *payload.TestScore
		}
		if payload.ExamScore != nil {
			scores.Exam = *payload.ExamScore
		}

		if err := grading.Validate(scores, current.AcademicYear, current.Term); err != nil {
			return err
		}

		total := grading.Total(scores)
		gesGrade, letterGrade := grading.Classify(&total)

		current.ClassworkScore = grading.Quantize(scores.Classwork)
		current.HomeworkScore = grading.Quantize(scores.Homework)
		current.TestScore = grading.Quantize(scores.Test)
		current.ExamScore = grading.Quantize(scores.Exam)
		current.TotalScore = &total
		current.GESGrade = gesGrade
		current.LetterGrade = letterGrade
		if payload.Remarks != nil {
			current.Remarks = s.sanitize(*payload.Remarks)
		}

		if moved := s.significantChanges(before, current); len(moved) > 0 {
			current.RequiresReview = true
			current.ReviewNotes = "significant score change: " + strings.Join(moved, ", ")
		}

		if len(GradeChanges(&before, current)) == 0 && current.Remarks == before.Remarks {
			unchanged = true
			after = current
			return nil
		}

		if err := tx.Grades.Update(ctx, &current); err != nil {
			return err
		}
		after = current
		return nil
	})
	if err != nil {
		return dto.GradeMutationResponse{}, s.reject(span, "update", "update_failed", err)
	}

	if unchanged {
		span.SetAttributes(attribute.Bool("grade.idempotent", true))
		observability.GradeMutations().WithLabelValues("update", "unchanged").Inc()
		return dto.GradeMutationResponse{Grade: dto.NewGradeResponse(after)}, nil
	}

	sideEffects := s.coordinator.Record(ctx, AuditEvent{
		Actor:      actor,
		Action:     models.AuditActionUpdate,
		EntityType: "grade",
		EntityID:   &after.ID,
		Changes:    GradeChanges(&before, after),
		Grade:      &after,
	})

	span.SetAttributes(
		attribute.Float64("grade.total", floatOrZero(after.TotalScore)),
		attribute.String("grade.ges", after.GESGrade),
		attribute.Bool("grade.requires_review", after.RequiresReview),
	)
	observability.GradeMutations().WithLabelValues("update", "ok").Inc()
	s.logger.Info().
		Uint("grade_id", after.ID).
		Str("ges_grade", after.GESGrade).
		Bool("requires_review", after.RequiresReview).
		Msg("grade updated")

	return dto.GradeMutationResponse{
		Grade:       dto.NewGradeResponse(after),
		SideEffects: sideEffectsToDTO(sideEffects),
	}, nil
}

func (s *gradeService) GetGrade(ctx context.Context, gradeID uint) (dto.GradeResponse, error) {
	grade, err := s.store.Grades.GetByID(ctx, gradeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradeResponse{}, ErrGradeNotFound
		}
		return dto.GradeResponse{}, err
	}
	return dto.NewGradeResponse(grade), nil
}

func (s *gradeService) ListGrades(ctx context.Context, req dto.GradeListRequest) (dto.GradeListResponse, error) {
	filter := repository.GradeFilter{
		ClassLevel:     strings.ToUpper(strings.TrimSpace(req.ClassLevel)),
		AcademicYear:   strings.TrimSpace(req.AcademicYear),
		RequiresReview: req.RequiresReview,
		Page:           req.Page,
		PageSize:       req.PageSize,
	}
	if req.StudentID > 0 {
		filter.StudentID = &req.StudentID
	}
	if req.SubjectID > 0 {
		filter.SubjectID = &req.SubjectID
	}
	if req.Term > 0 {
		term := req.Term
		filter.Term = &term
	}

	grades, total, err := s.store.Grades.List(ctx, filter)
	if err != nil {
		return dto.GradeListResponse{}, err
	}

	return dto.GradeListResponse{
		Items:      dto.NewGradeResponseSlice(grades),
		Pagination: dto.NewPaginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

func (s *gradeService) LockGrade(ctx context.Context, gradeID uint, actor Actor) (dto.GradeResponse, error) {
	return s.setGradeLock(ctx, gradeID, actor, true)
}

func (s *gradeService) UnlockGrade(ctx context.Context, gradeID uint, actor Actor) (dto.GradeResponse, error) {
	return s.setGradeLock(ctx, gradeID, actor, false)
}

func (s *gradeService) setGradeLock(ctx context.Context, gradeID uint, actor Actor, locked bool) (dto.GradeResponse, error) {
	var (
		grade     models.Grade
		unchanged bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		current, err := tx.Grades.GetByID(ctx, gradeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGradeNotFound
			}
			return err
		}
		if current.IsLocked == locked {
			unchanged = true
			grade = current
			return nil
		}
		current.IsLocked = locked
		if err := tx.Grades.Update(ctx, &current); err != nil {
			return err
		}
		grade = current
		return nil
	})
	if err != nil {
		return dto.GradeResponse{}, err
	}

	if !unchanged {
		s.coordinator.Record(ctx, AuditEvent{
			Actor:      actor,
			Action:     models.AuditActionUpdate,
			EntityType: "grade",
			EntityID:   &grade.ID,
			Changes: map[string]interface{}{
				"is_locked": map[string]interface{}{"from": !locked, "to": locked},
			},
		})
		s.logger.Info().Uint("grade_id", grade.ID).Bool("locked", locked).Msg("grade lock changed")
	}

	return dto.NewGradeResponse(grade), nil
}

// checkTermOpen rejects mutations into a locked academic term. A term with
// no registered row is open.
func (s *gradeService) checkTermOpen(ctx context.Context, tx *repository.Store, academicYear string, term int) error {
	registered, err := tx.Terms.FindByYearTerm(ctx, academicYear, term)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if registered.IsLocked {
		return ErrTermLocked
	}
	return nil
}

func (s *gradeService) sanitize(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

// significantChanges lists the components whose edit moved them by more than
// the review threshold. Any entry flags the grade for review.
func (s *gradeService) significantChanges(before, after models.Grade) []string {
	components := []struct {
		name     string
		from, to float64
	}{
		{"classwork", before.ClassworkScore, after.ClassworkScore},
		{"homework", before.HomeworkScore, after.HomeworkScore},
		{"test", before.TestScore, after.TestScore},
		{"exam", before.ExamScore, after.ExamScore},
	}

	var moved []string
	for _, component := range components {
		if math.Abs(component.to-component.from) > s.reviewThreshold {
			moved = append(moved, fmt.Sprintf("%s %.2f -> %.2f", component.name, component.from, component.to))
		}
	}
	return moved
}

func (s *gradeService) reject(span trace.Span, operation, reason string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)
	observability.GradeMutations().WithLabelValues(operation, mutationOutcome(err)).Inc()
	return err
}

func observeMutation(operation string, start time.Time) {
	observability.GradeMutationLatency().WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func mutationOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	var scoreErr *grading.ValidationError
	var fieldErrs validator.ValidationErrors
	var inactiveErr InactiveEntityError
	var resolutionErr ResolutionError
	switch {
	case errors.As(err, &resolutionErr):
		return "resolution_failed"
	case errors.As(err, &scoreErr), errors.As(err, &fieldErrs):
		return "rejected_validation"
	case errors.Is(err, ErrDuplicateGrade):
		return "conflict"
	case errors.Is(err, ErrGradeLocked), errors.Is(err, ErrTermLocked), errors.As(err, &inactiveErr):
		return "rejected_rule"
	case errors.Is(err, ErrStudentNotFound), errors.Is(err, ErrSubjectNotFound), errors.Is(err, ErrGradeNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func sideEffectsToDTO(effects SideEffects) dto.SideEffectsResponse {
	return dto.SideEffectsResponse{
		AuditRecorded:     effects.AuditRecorded,
		CachesInvalidated: effects.CachesInvalidated,
		Degraded:          effects.Degraded,
	}
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
