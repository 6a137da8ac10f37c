package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the gradebook repositories over one database handle so the
// grade orchestrator can run multi-entity mutations inside a single
// transaction.
type Store struct {
	db *gorm.DB

	Students    StudentRepository
	Teachers    TeacherRepository
	Subjects    SubjectRepository
	Terms       AcademicTermRepository
	Assignments ClassAssignmentRepository
	Grades      GradeRepository
	ReportCards ReportCardRepository
	Audits      AuditRepository
}

// NewStore wires every repository against the provided database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Students:    NewStudentRepository(db),
		Teachers:    NewTeacherRepository(db),
		Subjects:    NewSubjectRepository(db),
		Terms:       NewAcademicTermRepository(db),
		Assignments: NewClassAssignmentRepository(db),
		Grades:      NewGradeRepository(db),
		ReportCards: NewReportCardRepository(db),
		Audits:      NewAuditRepository(db),
	}
}

// Transaction runs fn against a Store bound to one database transaction.
// Returning a non-nil error rolls every write back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
