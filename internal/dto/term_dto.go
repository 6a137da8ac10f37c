package dto

import (
	"time"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// TermLockRequest identifies the academic term to lock or unlock.
type TermLockRequest struct {
	AcademicYear string `json:"academic_year" validate:"required"`
	Term         int    `json:"term" validate:"required,min=1,max=3"`
}

// TermResponse is the serialized representation of an academic term.
type TermResponse struct {
	ID           uint      `json:"id"`
	AcademicYear string    `json:"academic_year"`
	Term         int       `json:"term"`
	Label        string    `json:"label"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	IsCurrent    bool      `json:"is_current"`
	IsLocked     bool      `json:"is_locked"`
}

// NewTermResponse converts an academic term model into a DTO.
func NewTermResponse(term models.AcademicTerm) TermResponse {
	return TermResponse{
		ID:           term.ID,
		AcademicYear: term.AcademicYear,
		Term:         term.Term,
		Label:        term.Label(),
		StartDate:    term.StartDate,
		EndDate:      term.EndDate,
		IsCurrent:    term.IsCurrent,
		IsLocked:     term.IsLocked,
	}
}
