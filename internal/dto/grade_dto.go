package dto

import (
	"time"

	"github.com/kboateng/adesua-go-api/internal/grading"
	"github.com/kboateng/adesua-go-api/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta computes page counts for a list response.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// SubmitGradeRequest describes the payload for recording a new grade.
// Score, year and term violations are collected by the score policy, so
// only the identifying fields carry request-shape validation.
type SubmitGradeRequest struct {
	StudentID      uint    `json:"student_id" validate:"required"`
	SubjectID      uint    `json:"subject_id" validate:"required"`
	AcademicYear   string  `json:"academic_year"`
	Term           int     `json:"term"`
	ClassworkScore float64 `json:"classwork_score"`
	HomeworkScore  float64 `json:"homework_score"`
	TestScore      float64 `json:"test_score"`
	ExamScore      float64 `json:"exam_score"`
	Remarks        string  `json:"remarks" validate:"omitempty,max=2000"`
}

// UpdateGradeRequest captures partial score updates for an existing grade.
type UpdateGradeRequest struct {
	ClassworkScore *float64 `json:"classwork_score"`
	HomeworkScore  *float64 `json:"homework_score"`
	TestScore      *float64 `json:"test_score"`
	ExamScore      *float64 `json:"exam_score"`
	Remarks        *string  `json:"remarks" validate:"omitempty,max=2000"`
}

// GradeListRequest defines filters for listing grades.
type GradeListRequest struct {
	Page           int
	PageSize       int
	StudentID      uint
	SubjectID      uint
	ClassLevel     string
	AcademicYear   string
	Term           int
	RequiresReview *bool
}

// GradeResponse is the serialized representation of a recorded grade.
type GradeResponse struct {
	ID                uint      `json:"id"`
	StudentID         uint      `json:"student_id"`
	StudentName       string    `json:"student_name,omitempty"`
	SubjectID         uint      `json:"subject_id"`
	SubjectCode       string    `json:"subject_code,omitempty"`
	SubjectName       string    `json:"subject_name,omitempty"`
	ClassAssignmentID *uint     `json:"class_assignment_id,omitempty"`
	ClassLevel        string    `json:"class_level"`
	AcademicYear      string    `json:"academic_year"`
	Term              int       `json:"term"`
	ClassworkScore    float64   `json:"classwork_score"`
	HomeworkScore     float64   `json:"homework_score"`
	TestScore         float64   `json:"test_score"`
	ExamScore         float64   `json:"exam_score"`
	TotalScore        *float64  `json:"total_score"`
	GESGrade          string    `json:"ges_grade"`
	LetterGrade       string    `json:"letter_grade"`
	DisplayGrade      string    `json:"display_grade"`
	IsPassing         bool      `json:"is_passing"`
	RequiresReview    bool      `json:"requires_review"`
	ReviewNotes       string    `json:"review_notes,omitempty"`
	Remarks           string    `json:"remarks,omitempty"`
	IsLocked          bool      `json:"is_locked"`
	RecordedByID      *uint     `json:"recorded_by_id,omitempty"`
	RecordedByRole    string    `json:"recorded_by_role,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SideEffectsResponse reports how the post-commit side effects fared.
type SideEffectsResponse struct {
	AuditRecorded     bool     `json:"audit_recorded"`
	CachesInvalidated bool     `json:"caches_invalidated"`
	Degraded          []string `json:"degraded,omitempty"`
}

// GradeMutationResponse wraps a mutated grade with its side-effect report.
type GradeMutationResponse struct {
	Grade       GradeResponse       `json:"grade"`
	SideEffects SideEffectsResponse `json:"side_effects"`
}

// GradeListResponse wraps a paginated grade response.
type GradeListResponse struct {
	Items      []GradeResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// NewGradeResponse converts a grade model into a DTO.
func NewGradeResponse(grade models.Grade) GradeResponse {
	response := GradeResponse{
		ID:                grade.ID,
		StudentID:         grade.StudentID,
		SubjectID:         grade.SubjectID,
		ClassAssignmentID: grade.ClassAssignmentID,
		ClassLevel:        grade.ClassLevel,
		AcademicYear:      grade.AcademicYear,
		Term:              grade.Term,
		ClassworkScore:    grade.ClassworkScore,
		HomeworkScore:     grade.HomeworkScore,
		TestScore:         grade.TestScore,
		ExamScore:         grade.ExamScore,
		TotalScore:        grade.TotalScore,
		GESGrade:          grade.GESGrade,
		LetterGrade:       grade.LetterGrade,
		DisplayGrade:      grade.DisplayGrade(),
		IsPassing:         grading.IsPassing(grade.TotalScore),
		RequiresReview:    grade.RequiresReview,
		ReviewNotes:       grade.ReviewNotes,
		Remarks:           grade.Remarks,
		IsLocked:          grade.IsLocked,
		RecordedByID:      grade.RecordedByID,
		RecordedByRole:    grade.RecordedByRole,
		CreatedAt:         grade.CreatedAt,
		UpdatedAt:         grade.UpdatedAt,
	}
	if grade.Student.ID != 0 {
		response.StudentName = grade.Student.FullName()
	}
	if grade.Subject.ID != 0 {
		response.SubjectCode = grade.Subject.Code
		response.SubjectName = grade.Subject.Name
	}
	return response
}

// NewGradeResponseSlice converts a slice of grade models into DTOs.
func NewGradeResponseSlice(grades []models.Grade) []GradeResponse {
	responses := make([]GradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, NewGradeResponse(grade))
	}

	return responses
}
