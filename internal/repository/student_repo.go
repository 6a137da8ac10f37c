package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByAdmissionNumber(ctx context.Context, admissionNumber string) (models.Student, error)
	UpsertBatch(ctx context.Context, items []models.Student) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByAdmissionNumber(ctx context.Context, admissionNumber string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("admission_number = ?", admissionNumber).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) UpsertBatch(ctx context.Context, items []models.Student) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admission_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "class_level", "date_of_birth", "guardian_name", "guardian_phone", "is_active", "updated_at"}),
	})

	result := tx.Create(&items)
	return result.RowsAffected, result.Error
}
