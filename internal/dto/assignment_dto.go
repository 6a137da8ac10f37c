package dto

import (
	"time"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// ResolveClassAssignmentRequest describes the payload for resolving the
// class assignment that should own a (classLevel, subject, academicYear) slot.
type ResolveClassAssignmentRequest struct {
	ClassLevel      string `json:"class_level" validate:"required"`
	SubjectID       uint   `json:"subject_id" validate:"required"`
	AcademicYear    string `json:"academic_year" validate:"required"`
	ActingTeacherID *uint  `json:"acting_teacher_id"`
}

// ClassAssignmentListRequest defines filters for listing class assignments.
type ClassAssignmentListRequest struct {
	Page         int
	PageSize     int
	ClassLevel   string
	SubjectID    uint
	TeacherID    uint
	AcademicYear string
	ActiveOnly   bool
}

// ClassAssignmentResponse is the serialized representation of a class assignment.
type ClassAssignmentResponse struct {
	ID                 uint      `json:"id"`
	ClassLevel         string    `json:"class_level"`
	ClassLevelDisplay  string    `json:"class_level_display"`
	SubjectID          uint      `json:"subject_id"`
	SubjectCode        string    `json:"subject_code,omitempty"`
	SubjectName        string    `json:"subject_name,omitempty"`
	TeacherID          uint      `json:"teacher_id"`
	TeacherName        string    `json:"teacher_name,omitempty"`
	TeacherEmployeeID  string    `json:"teacher_employee_id,omitempty"`
	IsSyntheticTeacher bool      `json:"is_synthetic_teacher"`
	AcademicYear       string    `json:"academic_year"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ResolutionResponse reports the assignment a resolution settled on and how
// it was obtained.
type ResolutionResponse struct {
	Assignment ClassAssignmentResponse `json:"assignment"`
	Outcome    string                  `json:"outcome"`
	Warnings   []string                `json:"warnings,omitempty"`
}

// ClassAssignmentListResponse wraps a paginated class assignment response.
type ClassAssignmentListResponse struct {
	Items      []ClassAssignmentResponse `json:"items"`
	Pagination PaginationMeta            `json:"pagination"`
}

// NewClassAssignmentResponse converts a class assignment model into a DTO.
func NewClassAssignmentResponse(assignment models.ClassAssignment) ClassAssignmentResponse {
	response := ClassAssignmentResponse{
		ID:                assignment.ID,
		ClassLevel:        assignment.ClassLevel,
		ClassLevelDisplay: models.ClassLevelDisplay(assignment.ClassLevel),
		SubjectID:         assignment.SubjectID,
		TeacherID:         assignment.TeacherID,
		AcademicYear:      assignment.AcademicYear,
		IsActive:          assignment.IsActive,
		CreatedAt:         assignment.CreatedAt,
		UpdatedAt:         assignment.UpdatedAt,
	}
	if assignment.Subject.ID != 0 {
		response.SubjectCode = assignment.Subject.Code
		response.SubjectName = assignment.Subject.Name
	}
	if assignment.Teacher.ID != 0 {
		response.TeacherName = assignment.Teacher.FullName()
		response.TeacherEmployeeID = assignment.Teacher.EmployeeID
		response.IsSyntheticTeacher = assignment.Teacher.IsSynthetic
	}
	return response
}

// NewClassAssignmentResponseSlice converts a slice of class assignment models into DTOs.
func NewClassAssignmentResponseSlice(assignments []models.ClassAssignment) []ClassAssignmentResponse {
	responses := make([]ClassAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewClassAssignmentResponse(assignment))
	}

	return responses
}
