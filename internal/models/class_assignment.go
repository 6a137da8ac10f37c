package models

import "time"

// ClassAssignment binds one teacher to a (class level, subject, academic year)
// triple. It is the teaching context every grade is recorded under. The triple
// is unique; an inactive assignment is reactivated rather than duplicated.
type ClassAssignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ClassLevel   string    `gorm:"size:20;not null;uniqueIndex:idx_assignments_level_subject_year" json:"class_level"`
	SubjectID    uint      `gorm:"not null;uniqueIndex:idx_assignments_level_subject_year" json:"subject_id"`
	AcademicYear string    `gorm:"size:9;not null;uniqueIndex:idx_assignments_level_subject_year" json:"academic_year"`
	TeacherID    uint      `gorm:"not null;index" json:"teacher_id"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Subject      Subject   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"subject"`
	Teacher      Teacher   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
}
