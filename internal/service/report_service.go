package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/grading"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/repository"
)

// ReportService serves term aggregations derived from recorded grades: the
// per-student report card and per-class performance summaries. Both are
// read-through cached under the scopes the audit coordinator invalidates,
// so a grade mutation is followed by a fresh aggregation.
type ReportService interface {
	GetReportCard(ctx context.Context, studentID uint, academicYear string, term int) (dto.ReportCardResponse, error)
	GetClassSummary(ctx context.Context, subjectID uint, classLevel, academicYear string, term int) (dto.ClassSummaryResponse, error)
}

type reportService struct {
	store    *repository.Store
	cache    *redis.Client
	logger   zerolog.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewReportService constructs the report service. The cache client is
// optional; without it every request recomputes.
func NewReportService(store *repository.Store, cache *redis.Client, logger zerolog.Logger, cacheTTL time.Duration) ReportService {
	return &reportService{
		store:    store,
		cache:    cache,
		logger:   logger.With().Str("component", "report_service").Logger(),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func (s *reportService) GetReportCard(ctx context.Context, studentID uint, academicYear string, term int) (dto.ReportCardResponse, error) {
	if err := validateTermScope(academicYear, term); err != nil {
		return dto.ReportCardResponse{}, err
	}

	cacheKey := reportCacheKey(studentID, academicYear, term)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ReportCardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("report card cache hit")
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read report card cache")
		}
	}

	student, err := s.store.Students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportCardResponse{}, ErrStudentNotFound
		}
		return dto.ReportCardResponse{}, err
	}

	grades, err := s.store.Grades.ListForStudentTerm(ctx, studentID, academicYear, term)
	if err != nil {
		return dto.ReportCardResponse{}, err
	}

	average := termAverage(grades)
	response := dto.ReportCardResponse{
		StudentID:       student.ID,
		StudentName:     student.FullName(),
		AdmissionNumber: student.AdmissionNumber,
		ClassLevel:      student.ClassLevel,
		AcademicYear:    academicYear,
		Term:            term,
		AverageScore:    average,
		OverallGrade:    grading.OverallGrade(average),
		Subjects:        subjectResults(grades),
		GeneratedAt:     s.now(),
	}

	// Keep the persisted report card in step with the computed one so
	// printed cards and the API agree.
	card := models.ReportCard{
		StudentID:    student.ID,
		AcademicYear: academicYear,
		Term:         term,
		AverageScore: response.AverageScore,
		OverallGrade: response.OverallGrade,
	}
	if err := s.store.ReportCards.Upsert(ctx, &card); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("failed to persist report card")
	}

	s.writeCache(ctx, cacheKey, response, "report card")
	return response, nil
}

func (s *reportService) GetClassSummary(ctx context.Context, subjectID uint, classLevel, academicYear string, term int) (dto.ClassSummaryResponse, error) {
	if err := validateSummaryScope(classLevel, academicYear, term); err != nil {
		return dto.ClassSummaryResponse{}, err
	}

	cacheKey := classSummaryCacheKey(classLevel, academicYear, term)
	if subjectID > 0 {
		cacheKey = subjectSummaryCacheKey(subjectID, classLevel, academicYear, term)
	}
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ClassSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("class_level", classLevel).Msg("class summary cache hit")
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read class summary cache")
		}
	}

	response := dto.ClassSummaryResponse{
		ClassLevel:   classLevel,
		AcademicYear: academicYear,
		Term:         term,
		GeneratedAt:  s.now(),
	}

	var subjectFilter *uint
	if subjectID > 0 {
		subject, err := s.store.Subjects.GetByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ClassSummaryResponse{}, ErrSubjectNotFound
			}
			return dto.ClassSummaryResponse{}, err
		}
		response.SubjectID = subject.ID
		response.SubjectCode = subject.Code
		subjectFilter = &subjectID
	}

	grades, err := s.store.Grades.ListForClassTerm(ctx, classLevel, subjectFilter, academicYear, term)
	if err != nil {
		return dto.ClassSummaryResponse{}, err
	}

	distribution := map[string]int64{}
	var gradedCount, passingCount int64
	var totalSum float64
	for _, grade := range grades {
		distribution[grade.GESGrade]++
		if grade.TotalScore != nil {
			gradedCount++
			totalSum += *grade.TotalScore
		}
		if grading.IsPassing(grade.TotalScore) {
			passingCount++
		}
	}

	response.GradeCount = int64(len(grades))
	response.GradeDistribution = distribution
	if gradedCount > 0 {
		response.AverageScore = grading.Quantize(totalSum / float64(gradedCount))
	}
	if len(grades) > 0 {
		response.PassingRate = grading.Quantize(float64(passingCount) / float64(len(grades)) * 100)
	}

	s.writeCache(ctx, cacheKey, response, "class summary")
	return response, nil
}

func (s *reportService) writeCache(ctx context.Context, cacheKey string, response interface{}, what string) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(response)
	if err == nil {
		if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
			s.logger.Warn().Err(err).Msgf("failed to store %s cache", what)
		}
	}
}

// termAverage follows the report card convention: the sum of recorded totals
// divided by the number of subjects on the card, so ungraded subjects pull
// the average down rather than disappearing from it.
func termAverage(grades []models.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, grade := range grades {
		if grade.TotalScore != nil {
			sum += *grade.TotalScore
		}
	}
	return grading.Quantize(sum / float64(len(grades)))
}

func subjectResults(grades []models.Grade) []dto.SubjectResultResponse {
	results := make([]dto.SubjectResultResponse, 0, len(grades))
	for _, grade := range grades {
		result := dto.SubjectResultResponse{
			SubjectID:      grade.SubjectID,
			ClassworkScore: grade.ClassworkScore,
			HomeworkScore:  grade.HomeworkScore,
			TestScore:      grade.TestScore,
			ExamScore:      grade.ExamScore,
			TotalScore:     grade.TotalScore,
			GESGrade:       grade.GESGrade,
			LetterGrade:    grade.LetterGrade,
			IsPassing:      grading.IsPassing(grade.TotalScore),
			RequiresReview: grade.RequiresReview,
		}
		if grade.Subject.ID != 0 {
			result.SubjectCode = grade.Subject.Code
			result.SubjectName = grade.Subject.Name
		}
		results = append(results, result)
	}
	return results
}

func validateTermScope(academicYear string, term int) error {
	fields := map[string]string{}
	if !models.ValidAcademicYear(academicYear) {
		fields["academic_year"] = "academic year must be consecutive years in YYYY/YYYY format"
	}
	if !models.ValidTerm(term) {
		fields["term"] = "term must be 1, 2 or 3"
	}
	if len(fields) > 0 {
		return &grading.ValidationError{Fields: fields}
	}
	return nil
}

func validateSummaryScope(classLevel, academicYear string, term int) error {
	fields := map[string]string{}
	if !models.ValidClassLevel(classLevel) {
		fields["class_level"] = "unknown class level"
	}
	if !models.ValidAcademicYear(academicYear) {
		fields["academic_year"] = "academic year must be consecutive years in YYYY/YYYY format"
	}
	if !models.ValidTerm(term) {
		fields["term"] = "term must be 1, 2 or 3"
	}
	if len(fields) > 0 {
		return &grading.ValidationError{Fields: fields}
	}
	return nil
}
