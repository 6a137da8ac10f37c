package models

import (
	"strings"
	"time"
)

// Student represents an enrolled learner whose results the gradebook tracks.
type Student struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AdmissionNumber string     `gorm:"size:20;uniqueIndex;not null" json:"admission_number"`
	FirstName       string     `gorm:"size:100;not null" json:"first_name"`
	LastName        string     `gorm:"size:100;not null" json:"last_name"`
	ClassLevel      string     `gorm:"size:20;index;not null" json:"class_level"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	GuardianName    string     `gorm:"size:200" json:"guardian_name"`
	GuardianPhone   string     `gorm:"size:20" json:"guardian_phone"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FullName returns the student's display name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
