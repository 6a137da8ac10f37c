package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// TeacherRepository provides access to teacher records for the assignment
// resolver's selection strategies.
type TeacherRepository interface {
	GetByID(ctx context.Context, id uint) (models.Teacher, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (models.Teacher, error)
	// ListActiveForSubject returns every active teacher qualified for the
	// subject, with their subject associations preloaded.
	ListActiveForSubject(ctx context.Context, subjectID uint) ([]models.Teacher, error)
	// FirstActive returns the longest-serving active teacher.
	FirstActive(ctx context.Context) (models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	UpsertBatch(ctx context.Context, items []models.Teacher) (int64, error)
	// ReplaceSubjects rewrites the teacher's subject qualifications.
	ReplaceSubjects(ctx context.Context, teacher *models.Teacher, subjects []models.Subject) error
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository constructs a teacher repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) GetByID(ctx context.Context, id uint) (models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.WithContext(ctx).Preload("Subjects").First(&teacher, id).Error; err != nil {
		return models.Teacher{}, err
	}

	return teacher, nil
}

func (r *teacherRepository) ListActiveForSubject(ctx context.Context, subjectID uint) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := r.db.WithContext(ctx).
		Joins("JOIN teacher_subjects ON teacher_subjects.teacher_id = teachers.id").
		Where("teacher_subjects.subject_id = ? AND teachers.is_active = ?", subjectID, true).
		Preload("Subjects").
		Order("teachers.id ASC").
		Find(&teachers).Error
	if err != nil {
		return nil, err
	}

	return teachers, nil
}

func (r *teacherRepository) FirstActive(ctx context.Context) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Preload("Subjects").
		First(&teacher).Error
	if err != nil {
		return models.Teacher{}, err
	}

	return teacher, nil
}

func (r *teacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepository) GetByEmployeeID(ctx context.Context, employeeID string) (models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).Preload("Subjects").First(&teacher).Error; err != nil {
		return models.Teacher{}, err
	}

	return teacher, nil
}

func (r *teacherRepository) UpsertBatch(ctx context.Context, items []models.Teacher) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	// Subject links are rewritten separately so a re-seed cannot duplicate
	// join rows; only the teacher columns take part in the upsert.
	tx := r.db.WithContext(ctx).Omit("Subjects").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "employee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "email", "phone", "qualification", "class_levels", "is_active", "updated_at"}),
	})

	result := tx.Create(&items)
	return result.RowsAffected, result.Error
}

func (r *teacherRepository) ReplaceSubjects(ctx context.Context, teacher *models.Teacher, subjects []models.Subject) error {
	return r.db.WithContext(ctx).Model(teacher).Association("Subjects").Replace(&subjects)
}
