package dto

import "time"

// SubjectResultResponse is a single subject line on a report card.
type SubjectResultResponse struct {
	SubjectID      uint     `json:"subject_id"`
	SubjectCode    string   `json:"subject_code"`
	SubjectName    string   `json:"subject_name"`
	ClassworkScore float64  `json:"classwork_score"`
	HomeworkScore  float64  `json:"homework_score"`
	TestScore      float64  `json:"test_score"`
	ExamScore      float64  `json:"exam_score"`
	TotalScore     *float64 `json:"total_score"`
	GESGrade       string   `json:"ges_grade"`
	LetterGrade    string   `json:"letter_grade"`
	IsPassing      bool     `json:"is_passing"`
	RequiresReview bool     `json:"requires_review"`
}

// ReportCardResponse aggregates a student's term results.
type ReportCardResponse struct {
	StudentID       uint                    `json:"student_id"`
	StudentName     string                  `json:"student_name"`
	AdmissionNumber string                  `json:"admission_number"`
	ClassLevel      string                  `json:"class_level"`
	AcademicYear    string                  `json:"academic_year"`
	Term            int                     `json:"term"`
	AverageScore    float64                 `json:"average_score"`
	OverallGrade    string                  `json:"overall_grade"`
	Subjects        []SubjectResultResponse `json:"subjects"`
	GeneratedAt     time.Time               `json:"generated_at"`
	CacheHit        bool                    `json:"cache_hit"`
}

// ClassSummaryResponse aggregates class performance for one subject slot.
type ClassSummaryResponse struct {
	SubjectID         uint             `json:"subject_id"`
	SubjectCode       string           `json:"subject_code,omitempty"`
	ClassLevel        string           `json:"class_level"`
	AcademicYear      string           `json:"academic_year"`
	Term              int              `json:"term"`
	GradeCount        int64            `json:"grade_count"`
	AverageScore      float64          `json:"average_score"`
	PassingRate       float64          `json:"passing_rate"`
	GradeDistribution map[string]int64 `json:"grade_distribution"`
	GeneratedAt       time.Time        `json:"generated_at"`
	CacheHit          bool             `json:"cache_hit"`
}
