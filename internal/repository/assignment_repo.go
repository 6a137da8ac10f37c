package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// ClassAssignmentFilter narrows class assignment listings.
type ClassAssignmentFilter struct {
	ClassLevel   string
	SubjectID    *uint
	TeacherID    *uint
	AcademicYear string
	ActiveOnly   bool
	Page         int
	PageSize     int
}

// ClassAssignmentRepository provides access to the teaching-context records
// grades are bound to. The (class level, subject, academic year) triple is
// unique; Create surfaces gorm.ErrDuplicatedKey when it is violated.
type ClassAssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.ClassAssignment, error)
	FindActive(ctx context.Context, classLevel string, subjectID uint, academicYear string) (models.ClassAssignment, error)
	// FindAny matches the triple regardless of the active flag so inactive
	// assignments can be reactivated instead of duplicated.
	FindAny(ctx context.Context, classLevel string, subjectID uint, academicYear string) (models.ClassAssignment, error)
	Create(ctx context.Context, assignment *models.ClassAssignment) error
	Update(ctx context.Context, assignment *models.ClassAssignment) error
	List(ctx context.Context, filter ClassAssignmentFilter) ([]models.ClassAssignment, int64, error)
}

type classAssignmentRepository struct {
	db *gorm.DB
}

// NewClassAssignmentRepository constructs a class assignment repository.
func NewClassAssignmentRepository(db *gorm.DB) ClassAssignmentRepository {
	return &classAssignmentRepository{db: db}
}

func (r *classAssignmentRepository) GetByID(ctx context.Context, id uint) (models.ClassAssignment, error) {
	var assignment models.ClassAssignment
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Teacher").
		First(&assignment, id).Error
	if err != nil {
		return models.ClassAssignment{}, err
	}

	return assignment, nil
}

func (r *classAssignmentRepository) FindActive(ctx context.Context, classLevel string, subjectID uint, academicYear string) (models.ClassAssignment, error) {
	return r.findOne(ctx, classLevel, subjectID, academicYear, true)
}

func (r *classAssignmentRepository) FindAny(ctx context.Context, classLevel string, subjectID uint, academicYear string) (models.ClassAssignment, error) {
	return r.findOne(ctx, classLevel, subjectID, academicYear, false)
}

func (r *classAssignmentRepository) findOne(ctx context.Context, classLevel string, subjectID uint, academicYear string, activeOnly bool) (models.ClassAssignment, error) {
	query := r.db.WithContext(ctx).
		Where("class_level = ? AND subject_id = ? AND academic_year = ?", classLevel, subjectID, academicYear)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var assignment models.ClassAssignment
	err := query.Preload("Subject").Preload("Teacher").First(&assignment).Error
	if err != nil {
		return models.ClassAssignment{}, err
	}

	return assignment, nil
}

func (r *classAssignmentRepository) Create(ctx context.Context, assignment *models.ClassAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *classAssignmentRepository) Update(ctx context.Context, assignment *models.ClassAssignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

func (r *classAssignmentRepository) List(ctx context.Context, filter ClassAssignmentFilter) ([]models.ClassAssignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClassAssignment{})

	if filter.ClassLevel != "" {
		query = query.Where("class_level = ?", filter.ClassLevel)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.AcademicYear != "" {
		query = query.Where("academic_year = ?", filter.AcademicYear)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
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

	var assignments []models.ClassAssignment
	err := query.
		Preload("Subject").
		Preload("Teacher").
		Order("class_level ASC, subject_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}
