package dto

import "github.com/kboateng/adesua-go-api/internal/models"

// TeacherSeed is a teacher row plus the codes of the subjects the teacher is
// qualified to teach. Codes are resolved against the subjects table after the
// subject rows in the same payload have been written.
type TeacherSeed struct {
	models.Teacher
	SubjectCodes []string `json:"subject_codes"`
}

// RosterSeedRequest carries the fixture roster for a development environment.
type RosterSeedRequest struct {
	Students []models.Student `json:"students"`
	Subjects []models.Subject `json:"subjects"`
	Teachers []TeacherSeed    `json:"teachers"`
}

// RosterSeedResponse reports how many rows each batch touched.
type RosterSeedResponse struct {
	StudentsAffected int64 `json:"students_affected"`
	SubjectsAffected int64 `json:"subjects_affected"`
	TeachersAffected int64 `json:"teachers_affected"`
}
