package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/kboateng/adesua-go-api/internal/middleware"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/observability"
	"github.com/kboateng/adesua-go-api/internal/repository"
)

// auditStreamSubject carries every persisted audit entry to external
// audit-log viewers.
const auditStreamSubject = "adesua.audit.grades"

// SideEffects reports how the best-effort side effects of a committed
// mutation fared. Degraded lists the effects that failed; the mutation
// itself has already succeeded when this is produced.
type SideEffects struct {
	AuditRecorded     bool
	CachesInvalidated bool
	Degraded          []string
}

// merge folds the outcome of a further side-effect round into s. Booleans
// stay true only when every round succeeded; degradations are deduplicated.
func (s SideEffects) merge(other SideEffects) SideEffects {
	merged := SideEffects{
		AuditRecorded:     s.AuditRecorded && other.AuditRecorded,
		CachesInvalidated: s.CachesInvalidated && other.CachesInvalidated,
		Degraded:          s.Degraded,
	}
	for _, effect := range other.Degraded {
		seen := false
		for _, existing := range merged.Degraded {
			if existing == effect {
				seen = true
				break
			}
		}
		if !seen {
			merged.Degraded = append(merged.Degraded, effect)
		}
	}
	return merged
}

// AuditEvent describes a committed mutation for the audit trail and the
// caches it touches. Grade and Assignment, when set, determine which cached
// aggregations are invalidated.
type AuditEvent struct {
	Actor      Actor
	Action     string
	EntityType string
	EntityID   *uint
	Changes    map[string]interface{}
	Grade      *models.Grade
	Assignment *models.ClassAssignment
}

// AuditCoordinator persists audit entries, invalidates derived caches and
// feeds the external audit stream after a mutation commits. It never fails
// the calling operation.
type AuditCoordinator interface {
	Record(ctx context.Context, event AuditEvent) SideEffects
}

type auditCoordinator struct {
	audits repository.AuditRepository
	cache  *redis.Client
	stream *nats.Conn
	logger zerolog.Logger
}

// NewAuditCoordinator constructs the coordinator. Cache and stream are
// optional; a nil client disables that side effect.
func NewAuditCoordinator(audits repository.AuditRepository, cache *redis.Client, stream *nats.Conn, logger zerolog.Logger) AuditCoordinator {
	return &auditCoordinator{
		audits: audits,
		cache:  cache,
		stream: stream,
		logger: logger.With().Str("component", "audit_coordinator").Logger(),
	}
}

func (c *auditCoordinator) Record(ctx context.Context, event AuditEvent) SideEffects {
	result := SideEffects{CachesInvalidated: true}

	entry := models.AuditEntry{
		ActorID:       event.Actor.ID,
		ActorRole:     normalizeActorRole(event.Actor.Role),
		Action:        event.Action,
		EntityType:    event.EntityType,
		EntityID:      event.EntityID,
		Changes:       changesToJSON(event.Changes),
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
	}

	if err := c.audits.Create(ctx, &entry); err != nil {
		c.logger.Warn().Err(err).
			Str("entity_type", event.EntityType).
			Str("action", event.Action).
			Msg("failed to persist audit entry")
		observability.SideEffectDegradations().WithLabelValues("audit").Inc()
		result.Degraded = append(result.Degraded, "audit")
	} else {
		result.AuditRecorded = true
	}

	keys := event.cacheKeys()
	if c.cache != nil && len(keys) > 0 {
		if err := c.cache.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn().Err(err).
				Strs("keys", keys).
				Msg("failed to invalidate caches")
			observability.SideEffectDegradations().WithLabelValues("cache").Inc()
			result.CachesInvalidated = false
			result.Degraded = append(result.Degraded, "cache")
		} else {
			c.logger.Debug().Strs("keys", keys).Msg("caches invalidated")
		}
	}

	if c.stream != nil {
		if err := c.publish(entry); err != nil {
			c.logger.Warn().Err(err).Msg("failed to publish audit entry")
			observability.SideEffectDegradations().WithLabelValues("stream").Inc()
			result.Degraded = append(result.Degraded, "stream")
		}
	}

	return result
}

func (c *auditCoordinator) publish(entry models.AuditEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.stream.Publish(auditStreamSubject, payload)
}

// cacheKeys lists every cached aggregation the event invalidates: the
// per-subject class summary, the student's report cards for the year and the
// class-level summary. Assignment events cover all terms of the year.
func (e AuditEvent) cacheKeys() []string {
	var keys []string
	if e.Grade != nil {
		keys = append(keys,
			subjectSummaryCacheKey(e.Grade.SubjectID, e.Grade.ClassLevel, e.Grade.AcademicYear, e.Grade.Term),
			classSummaryCacheKey(e.Grade.ClassLevel, e.Grade.AcademicYear, e.Grade.Term),
		)
		keys = append(keys, reportCacheKeys(e.Grade.StudentID, e.Grade.AcademicYear)...)
	}
	if e.Assignment != nil {
		for term := models.FirstTerm; term <= models.ThirdTerm; term++ {
			keys = append(keys,
				subjectSummaryCacheKey(e.Assignment.SubjectID, e.Assignment.ClassLevel, e.Assignment.AcademicYear, term),
				classSummaryCacheKey(e.Assignment.ClassLevel, e.Assignment.AcademicYear, term),
			)
		}
	}
	return keys
}

func reportCacheKey(studentID uint, academicYear string, term int) string {
	return fmt.Sprintf("report:student:%d:%s:%d", studentID, academicYear, term)
}

func reportCacheKeys(studentID uint, academicYear string) []string {
	keys := make([]string, 0, models.ThirdTerm)
	for term := models.FirstTerm; term <= models.ThirdTerm; term++ {
		keys = append(keys, reportCacheKey(studentID, academicYear, term))
	}
	return keys
}

func subjectSummaryCacheKey(subjectID uint, classLevel, academicYear string, term int) string {
	return fmt.Sprintf("summary:subject:%d:%s:%s:%d", subjectID, classLevel, academicYear, term)
}

func classSummaryCacheKey(classLevel, academicYear string, term int) string {
	return fmt.Sprintf("summary:class:%s:%s:%d", classLevel, academicYear, term)
}

func changesToJSON(changes map[string]interface{}) datatypes.JSONMap {
	if changes == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(changes)
}

// GradeChanges computes the audited field diff between two grade snapshots:
// the four component scores, the derived total and tiers, and the review
// flag. A nil before marks a creation, recorded as from-nil transitions.
func GradeChanges(before *models.Grade, after models.Grade) map[string]interface{} {
	changes := map[string]interface{}{}
	record := func(field string, from, to interface{}) {
		changes[field] = map[string]interface{}{"from": from, "to": to}
	}

	if before == nil {
		record("classwork_score", nil, after.ClassworkScore)
		record("homework_score", nil, after.HomeworkScore)
		record("test_score", nil, after.TestScore)
		record("exam_score", nil, after.ExamScore)
		record("total_score", nil, floatPointerValue(after.TotalScore))
		record("ges_grade", nil, after.GESGrade)
		record("letter_grade", nil, after.LetterGrade)
		return changes
	}

	if before.ClassworkScore != after.ClassworkScore {
		record("classwork_score", before.ClassworkScore, after.ClassworkScore)
	}
	if before.HomeworkScore != after.HomeworkScore {
		record("homework_score", before.HomeworkScore, after.HomeworkScore)
	}
	if before.TestScore != after.TestScore {
		record("test_score", before.TestScore, after.TestScore)
	}
	if before.ExamScore != after.ExamScore {
		record("exam_score", before.ExamScore, after.ExamScore)
	}
	if floatPointerValue(before.TotalScore) != floatPointerValue(after.TotalScore) {
		record("total_score", floatPointerValue(before.TotalScore), floatPointerValue(after.TotalScore))
	}
	if before.GESGrade != after.GESGrade {
		record("ges_grade", before.GESGrade, after.GESGrade)
	}
	if before.LetterGrade != after.LetterGrade {
		record("letter_grade", before.LetterGrade, after.LetterGrade)
	}
	if before.RequiresReview != after.RequiresReview {
		record("requires_review", before.RequiresReview, after.RequiresReview)
	}
	return changes
}

func floatPointerValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
