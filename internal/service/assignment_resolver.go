package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/grading"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/observability"
	"github.com/kboateng/adesua-go-api/internal/repository"
)

// Resolution outcomes.
const (
	ResolutionMatched     = "matched"
	ResolutionReactivated = "reactivated"
	ResolutionCreated     = "created"
	ResolutionSynthesized = "synthesized"
)

// ResolutionKey identifies the class-assignment slot to resolve.
// ActingTeacherID carries the requesting teacher, who is preferred for a
// fresh assignment when active and qualified.
type ResolutionKey struct {
	ClassLevel      string
	SubjectID       uint
	AcademicYear    string
	ActingTeacherID *uint
}

// Resolution reports the assignment a resolution settled on, how it was
// obtained and any placeholder teacher created along the way.
type Resolution struct {
	Assignment       models.ClassAssignment
	Outcome          string
	Warnings         []string
	SyntheticTeacher *models.Teacher
}

// AssignmentResolver guarantees that every grade mutation can attribute its
// subject slot to a teacher. Resolve operates on the caller's store so it
// participates in an enclosing transaction; ResolveClassAssignment is the
// standalone operation with its own transaction and side effects.
type AssignmentResolver interface {
	Resolve(ctx context.Context, store *repository.Store, key ResolutionKey) (Resolution, error)
	ResolveClassAssignment(ctx context.Context, payload dto.ResolveClassAssignmentRequest, actor Actor) (dto.ResolutionResponse, error)
	List(ctx context.Context, req dto.ClassAssignmentListRequest) (dto.ClassAssignmentListResponse, error)
}

type assignmentResolver struct {
	store            *repository.Store
	coordinator      AuditCoordinator
	validator        *validator.Validate
	logger           zerolog.Logger
	synthesizeEnable bool
}

// NewAssignmentResolver constructs the resolver. When synthesize is false a
// slot with no available teacher fails resolution instead of receiving a
// placeholder.
func NewAssignmentResolver(store *repository.Store, coordinator AuditCoordinator, validator *validator.Validate, logger zerolog.Logger, synthesize bool) AssignmentResolver {
	return &assignmentResolver{
		store:            store,
		coordinator:      coordinator,
		validator:        validator,
		logger:           logger.With().Str("component", "assignment_resolver").Logger(),
		synthesizeEnable: synthesize,
	}
}

func (r *assignmentResolver) ResolveClassAssignment(ctx context.Context, payload dto.ResolveClassAssignmentRequest, actor Actor) (dto.ResolutionResponse, error) {
	if err := r.validator.Struct(payload); err != nil {
		return dto.ResolutionResponse{}, err
	}

	key := ResolutionKey{
		ClassLevel:      strings.ToUpper(strings.TrimSpace(payload.ClassLevel)),
		SubjectID:       payload.SubjectID,
		AcademicYear:    strings.TrimSpace(payload.AcademicYear),
		ActingTeacherID: payload.ActingTeacherID,
	}
	if actor.TeacherID != nil && key.ActingTeacherID == nil {
		key.ActingTeacherID = actor.TeacherID
	}

	resolution, err := r.Resolve(ctx, r.store, key)
	if err != nil {
		return dto.ResolutionResponse{}, err
	}

	for _, event := range resolutionAuditEvents(resolution, actor) {
		r.coordinator.Record(ctx, event)
	}

	return dto.ResolutionResponse{
		Assignment: dto.NewClassAssignmentResponse(resolution.Assignment),
		Outcome:    resolution.Outcome,
		Warnings:   resolution.Warnings,
	}, nil
}

func (r *assignmentResolver) Resolve(ctx context.Context, store *repository.Store, key ResolutionKey) (Resolution, error) {
	tracer := otel.Tracer("github.com/kboateng/adesua-go-api/internal/service/assignment_resolver")
	ctx, span := tracer.Start(ctx, "assignments.resolve")
	span.SetAttributes(
		attribute.String("assignment.class_level", key.ClassLevel),
		attribute.Int64("assignment.subject_id", int64(key.SubjectID)),
		attribute.String("assignment.academic_year", key.AcademicYear),
	)
	defer span.End()

	resolution, err := r.resolve(ctx, store, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution_failed")
		observability.Resolutions().WithLabelValues("failed").Inc()
		return Resolution{}, err
	}

	span.SetAttributes(attribute.String("assignment.outcome", resolution.Outcome))
	observability.Resolutions().WithLabelValues(resolution.Outcome).Inc()
	return resolution, nil
}

func (r *assignmentResolver) resolve(ctx context.Context, store *repository.Store, key ResolutionKey) (Resolution, error) {
	if err := validateResolutionKey(key); err != nil {
		return Resolution{}, err
	}

	subject, err := store.Subjects.GetByID(ctx, key.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Resolution{}, ErrSubjectNotFound
		}
		return Resolution{}, err
	}
	if !subject.IsActive {
		return Resolution{}, InactiveEntityError{Entity: "subject"}
	}

	if existing, err := store.Assignments.FindActive(ctx, key.ClassLevel, key.SubjectID, key.AcademicYear); err == nil {
		return Resolution{Assignment: existing, Outcome: ResolutionMatched}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Resolution{}, err
	}

	if dormant, err := store.Assignments.FindAny(ctx, key.ClassLevel, key.SubjectID, key.AcademicYear); err == nil {
		dormant.IsActive = true
		if err := store.Assignments.Update(ctx, &dormant); err != nil {
			return Resolution{}, err
		}
		resolution := Resolution{Assignment: dormant, Outcome: ResolutionReactivated}
		if dormant.Teacher.ID != 0 && !dormant.Teacher.IsActive {
			resolution.Warnings = append(resolution.Warnings, "assigned teacher is no longer active")
		}
		return resolution, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Resolution{}, err
	}

	teacher, warnings, synthetic, err := r.selectTeacher(ctx, store, key, subject)
	if err != nil {
		return Resolution{}, err
	}

	assignment := models.ClassAssignment{
		ClassLevel:   key.ClassLevel,
		SubjectID:    key.SubjectID,
		AcademicYear: key.AcademicYear,
		IsActive:     true,
	}

	// The creates run in a nested transaction so a concurrent winner only
	// rolls back to the savepoint and the slot can be re-read.
	var slotConflict bool
	err = store.Transaction(ctx, func(tx *repository.Store) error {
		if synthetic {
			if err := tx.Teachers.Create(ctx, teacher); err != nil {
				return fmt.Errorf("create placeholder teacher: %w", err)
			}
		}
		assignment.TeacherID = teacher.ID
		if err := tx.Assignments.Create(ctx, &assignment); err != nil {
			slotConflict = errors.Is(err, gorm.ErrDuplicatedKey)
			return err
		}
		return nil
	})
	if err != nil {
		if slotConflict {
			winner, lookupErr := store.Assignments.FindActive(ctx, key.ClassLevel, key.SubjectID, key.AcademicYear)
			if lookupErr != nil {
				return Resolution{}, ResolutionError{Reason: "conflicting assignment could not be re-read", Err: lookupErr}
			}
			r.logger.Debug().
				Str("class_level", key.ClassLevel).
				Uint("subject_id", key.SubjectID).
				Msg("assignment created concurrently, adopting winner")
			return Resolution{Assignment: winner, Outcome: ResolutionMatched}, nil
		}
		return Resolution{}, err
	}

	assignment.Subject = subject
	assignment.Teacher = *teacher

	outcome := ResolutionCreated
	resolution := Resolution{Assignment: assignment, Outcome: outcome, Warnings: warnings}
	if synthetic {
		resolution.Outcome = ResolutionSynthesized
		resolution.SyntheticTeacher = teacher
		r.logger.Warn().
			Str("class_level", key.ClassLevel).
			Uint("subject_id", key.SubjectID).
			Str("academic_year", key.AcademicYear).
			Str("employee_id", teacher.EmployeeID).
			Msg("no teacher available, synthesized placeholder")
	}
	return resolution, nil
}

// selectTeacher walks the fallback ladder: the acting teacher when active
// and qualified, then an active qualified teacher preferring a class-level
// match, then any active teacher, finally a synthesized placeholder.
func (r *assignmentResolver) selectTeacher(ctx context.Context, store *repository.Store, key ResolutionKey, subject models.Subject) (*models.Teacher, []string, bool, error) {
	if key.ActingTeacherID != nil {
		acting, err := store.Teachers.GetByID(ctx, *key.ActingTeacherID)
		switch {
		case err == nil && acting.IsActive && acting.QualifiedFor(key.SubjectID):
			return &acting, nil, false, nil
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil, false, err
		}
	}

	qualified, err := store.Teachers.ListActiveForSubject(ctx, key.SubjectID)
	if err != nil {
		return nil, nil, false, err
	}
	if len(qualified) > 0 {
		for i := range qualified {
			if qualified[i].TeachesLevel(key.ClassLevel) {
				return &qualified[i], nil, false, nil
			}
		}
		return &qualified[0], nil, false, nil
	}

	fallback, err := store.Teachers.FirstActive(ctx)
	if err == nil {
		warning := fmt.Sprintf("teacher %s is not qualified for %s", fallback.FullName(), subject.Code)
		return &fallback, []string{warning}, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, false, err
	}

	if !r.synthesizeEnable {
		return nil, nil, false, ResolutionError{Reason: "no active teacher available"}
	}

	placeholder := &models.Teacher{
		EmployeeID:  syntheticEmployeeID(),
		FirstName:   "Unassigned",
		LastName:    "Teacher",
		IsActive:    true,
		IsSynthetic: true,
	}
	warning := "no active teacher available, placeholder assigned pending staffing"
	return placeholder, []string{warning}, true, nil
}

func (r *assignmentResolver) List(ctx context.Context, req dto.ClassAssignmentListRequest) (dto.ClassAssignmentListResponse, error) {
	filter := repository.ClassAssignmentFilter{
		ClassLevel:   strings.ToUpper(strings.TrimSpace(req.ClassLevel)),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		ActiveOnly:   req.ActiveOnly,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}
	if req.SubjectID > 0 {
		filter.SubjectID = &req.SubjectID
	}
	if req.TeacherID > 0 {
		filter.TeacherID = &req.TeacherID
	}

	assignments, total, err := r.store.Assignments.List(ctx, filter)
	if err != nil {
		return dto.ClassAssignmentListResponse{}, err
	}

	return dto.ClassAssignmentListResponse{
		Items:      dto.NewClassAssignmentResponseSlice(assignments),
		Pagination: dto.NewPaginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

func validateResolutionKey(key ResolutionKey) error {
	fields := map[string]string{}
	if !models.ValidClassLevel(key.ClassLevel) {
		fields["class_level"] = "unknown class level"
	}
	if key.SubjectID == 0 {
		fields["subject_id"] = "subject is required"
	}
	if !models.ValidAcademicYear(key.AcademicYear) {
		fields["academic_year"] = "academic year must be consecutive years in YYYY/YYYY format"
	}
	if len(fields) > 0 {
		return ResolutionError{Reason: "invalid resolution key", Err: &grading.ValidationError{Fields: fields}}
	}
	return nil
}

func syntheticEmployeeID() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TEMP-" + fragment[:10]
}

// resolutionAuditEvents lists the audit entries a resolution owes: nothing
// for a match, a reactivation update, or a creation plus the synthesized
// teacher when one was minted.
func resolutionAuditEvents(resolution Resolution, actor Actor) []AuditEvent {
	assignment := resolution.Assignment
	var events []AuditEvent

	switch resolution.Outcome {
	case ResolutionReactivated:
		events = append(events, AuditEvent{
			Actor:      actor,
			Action:     models.AuditActionUpdate,
			EntityType: "class_assignment",
			EntityID:   &assignment.ID,
			Changes: map[string]interface{}{
				"is_active": map[string]interface{}{"from": false, "to": true},
			},
			Assignment: &assignment,
		})
	case ResolutionCreated, ResolutionSynthesized:
		events = append(events, AuditEvent{
			Actor:      actor,
			Action:     models.AuditActionCreate,
			EntityType: "class_assignment",
			EntityID:   &assignment.ID,
			Changes: map[string]interface{}{
				"class_level":   map[string]interface{}{"from": nil, "to": assignment.ClassLevel},
				"subject_id":    map[string]interface{}{"from": nil, "to": assignment.SubjectID},
				"teacher_id":    map[string]interface{}{"from": nil, "to": assignment.TeacherID},
				"academic_year": map[string]interface{}{"from": nil, "to": assignment.AcademicYear},
			},
			Assignment: &assignment,
		})
	}

	if resolution.SyntheticTeacher != nil {
		teacher := resolution.SyntheticTeacher
		events = append(events, AuditEvent{
			Actor:      actor,
			Action:     models.AuditActionCreate,
			EntityType: "teacher",
			EntityID:   &teacher.ID,
			Changes: map[string]interface{}{
				"employee_id":  map[string]interface{}{"from": nil, "to": teacher.EmployeeID},
				"is_synthetic": map[string]interface{}{"from": nil, "to": true},
			},
		})
	}

	return events
}
