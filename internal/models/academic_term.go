package models

import (
	"fmt"
	"time"
)

// Terms of the Ghanaian school calendar.
const (
	FirstTerm  = 1
	SecondTerm = 2
	ThirdTerm  = 3
)

// ValidTerm reports whether term is one of the three school terms.
func ValidTerm(term int) bool {
	return term >= FirstTerm && term <= ThirdTerm
}

// AcademicTerm represents one term of an academic year. A locked term rejects
// every grade mutation until an administrator unlocks it again.
type AcademicTerm struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AcademicYear string    `gorm:"size:9;not null;uniqueIndex:idx_terms_year_term" json:"academic_year"`
	Term         int       `gorm:"not null;uniqueIndex:idx_terms_year_term" json:"term"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsCurrent    bool      `gorm:"not null;default:false" json:"is_current"`
	IsLocked     bool      `gorm:"not null;default:false" json:"is_locked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Label returns the term's display name, e.g. "2024/2025 Term 1".
func (t AcademicTerm) Label() string {
	return fmt.Sprintf("%s Term %d", t.AcademicYear, t.Term)
}
