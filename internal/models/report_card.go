package models

import "time"

// ReportCard stores a student's aggregated result for one term: the average
// of their grade totals and the overall letter derived from it.
type ReportCard struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	StudentID        uint      `gorm:"not null;uniqueIndex:idx_report_cards_scope" json:"student_id"`
	AcademicYear     string    `gorm:"size:9;not null;uniqueIndex:idx_report_cards_scope" json:"academic_year"`
	Term             int       `gorm:"not null;uniqueIndex:idx_report_cards_scope" json:"term"`
	AverageScore     float64   `gorm:"type:decimal(5,2);not null;default:0" json:"average_score"`
	OverallGrade     string    `gorm:"size:2" json:"overall_grade"`
	IsPublished      bool      `gorm:"not null;default:false" json:"is_published"`
	TeacherRemarks   string    `gorm:"type:text" json:"teacher_remarks"`
	PrincipalRemarks string    `gorm:"type:text" json:"principal_remarks"`
	GeneratedByID    *uint     `json:"generated_by_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Student          Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}
