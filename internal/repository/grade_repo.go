package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// GradeFilter narrows grade listings.
type GradeFilter struct {
	StudentID      *uint
	SubjectID      *uint
	ClassLevel     string
	AcademicYear   string
	Term           *int
	RequiresReview *bool
	Page           int
	PageSize       int
}

// GradeRepository provides access to grade records. The
// (student, subject, academic year, term) scope is unique; Create surfaces
// gorm.ErrDuplicatedKey when it is violated.
type GradeRepository interface {
	GetByID(ctx context.Context, id uint) (models.Grade, error)
	// FindByScope resolves the unique grade for one student, subject,
	// academic year, and term.
	FindByScope(ctx context.Context, studentID, subjectID uint, academicYear string, term int) (models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	List(ctx context.Context, filter GradeFilter) ([]models.Grade, int64, error)
	// ListForStudentTerm returns every grade feeding a student's report card
	// for one term.
	ListForStudentTerm(ctx context.Context, studentID uint, academicYear string, term int) ([]models.Grade, error)
	// ListForClassTerm returns the grades recorded for a class level in one
	// term, optionally narrowed to a single subject.
	ListForClassTerm(ctx context.Context, classLevel string, subjectID *uint, academicYear string, term int) ([]models.Grade, error)
}

type gradeRepository struct {
	db *gorm.DB
}

// NewGradeRepository constructs a grade repository.
func NewGradeRepository(db *gorm.DB) GradeRepository {
	return &gradeRepository{db: db}
}

func (r *gradeRepository) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	var grade models.Grade
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Subject").
		Preload("ClassAssignment").
		Preload("ClassAssignment.Teacher").
		First(&grade, id).Error
	if err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) FindByScope(ctx context.Context, studentID, subjectID uint, academicYear string, term int) (models.Grade, error) {
	var grade models.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND subject_id = ? AND academic_year = ? AND term = ?", studentID, subjectID, academicYear, term).
		First(&grade).Error
	if err != nil {
		return models.Grade{}, err
	}

	return grade, nil
}

func (r *gradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}

func (r *gradeRepository) List(ctx context.Context, filter GradeFilter) ([]models.Grade, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Grade{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.ClassLevel != "" {
		query = query.Where("class_level = ?", filter.ClassLevel)
	}
	if filter.AcademicYear != "" {
		query = query.Where("academic_year = ?", filter.AcademicYear)
	}
	if filter.Term != nil {
		query = query.Where("term = ?", *filter.Term)
	}
	if filter.RequiresReview != nil {
		query = query.Where("requires_review = ?", *filter.RequiresReview)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var grades []models.Grade
	err := query.
		Preload("Student").
		Preload("Subject").
		Order("academic_year ASC, term ASC, student_id ASC, subject_id ASC").
		Find(&grades).Error
	if err != nil {
		return nil, 0, err
	}

	return grades, total, nil
}

func (r *gradeRepository) ListForStudentTerm(ctx context.Context, studentID uint, academicYear string, term int) ([]models.Grade, error) {
	var grades []models.Grade
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND academic_year = ? AND term = ?", studentID, academicYear, term).
		Preload("Subject").
		Order("subject_id ASC").
		Find(&grades).Error
	if err != nil {
		return nil, err
	}

	return grades, nil
}

func (r *gradeRepository) ListForClassTerm(ctx context.Context, classLevel string, subjectID *uint, academicYear string, term int) ([]models.Grade, error) {
	query := r.db.WithContext(ctx).
		Where("class_level = ? AND academic_year = ? AND term = ?", classLevel, academicYear, term)
	if subjectID != nil {
		query = query.Where("subject_id = ?", *subjectID)
	}

	var grades []models.Grade
	if err := query.Order("student_id ASC").Find(&grades).Error; err != nil {
		return nil, err
	}

	return grades, nil
}
