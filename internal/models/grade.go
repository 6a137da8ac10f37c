package models

import (
	"fmt"
	"time"
)

// GradeNotAvailable marks a grade whose total score has not been computed.
const GradeNotAvailable = "N/A"

// Grade represents one student's result for one subject in a given term and
// academic year. The total score and both tiers are derived server-side and
// never accepted from callers.
type Grade struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	StudentID         uint             `gorm:"not null;uniqueIndex:idx_grades_scope;index:idx_grades_student_term" json:"student_id"`
	SubjectID         uint             `gorm:"not null;uniqueIndex:idx_grades_scope" json:"subject_id"`
	AcademicYear      string           `gorm:"size:9;not null;uniqueIndex:idx_grades_scope;index:idx_grades_student_term" json:"academic_year"`
	Term              int              `gorm:"not null;uniqueIndex:idx_grades_scope;index:idx_grades_student_term" json:"term"`
	ClassAssignmentID *uint            `gorm:"index" json:"class_assignment_id"`
	ClassLevel        string           `gorm:"size:20;index" json:"class_level"`
	ClassworkScore    float64          `gorm:"type:decimal(5,2);not null;default:0" json:"classwork_score"`
	HomeworkScore     float64          `gorm:"type:decimal(5,2);not null;default:0" json:"homework_score"`
	TestScore         float64          `gorm:"type:decimal(5,2);not null;default:0" json:"test_score"`
	ExamScore         float64          `gorm:"type:decimal(5,2);not null;default:0" json:"exam_score"`
	TotalScore        *float64         `gorm:"type:decimal(5,2);index" json:"total_score"`
	GESGrade          string           `gorm:"size:3;not null;default:'N/A';index" json:"ges_grade"`
	LetterGrade       string           `gorm:"size:3;not null;default:'N/A'" json:"letter_grade"`
	Remarks           string           `gorm:"type:text" json:"remarks"`
	RecordedByID      *uint            `json:"recorded_by_id"`
	RecordedByRole    string           `gorm:"size:16" json:"recorded_by_role"`
	IsLocked          bool             `gorm:"not null;default:false" json:"is_locked"`
	RequiresReview    bool             `gorm:"not null;default:false" json:"requires_review"`
	ReviewNotes       string           `gorm:"type:text" json:"review_notes"`
	CreatedAt         time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Student           Student          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Subject           Subject          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"subject"`
	ClassAssignment   *ClassAssignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"class_assignment,omitempty"`
}

// DisplayGrade combines the GES and letter tiers for report rendering,
// e.g. "2 (A)".
func (g Grade) DisplayGrade() string {
	switch {
	case g.GESGrade != "" && g.GESGrade != GradeNotAvailable && g.LetterGrade != "" && g.LetterGrade != GradeNotAvailable:
		return fmt.Sprintf("%s (%s)", g.GESGrade, g.LetterGrade)
	case g.GESGrade != "" && g.GESGrade != GradeNotAvailable:
		return g.GESGrade
	case g.LetterGrade != "" && g.LetterGrade != GradeNotAvailable:
		return g.LetterGrade
	default:
		return GradeNotAvailable
	}
}
