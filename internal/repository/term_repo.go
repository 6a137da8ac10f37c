package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// AcademicTermRepository provides access to academic term records and their
// administrative lock flag.
type AcademicTermRepository interface {
	FindByYearTerm(ctx context.Context, academicYear string, term int) (models.AcademicTerm, error)
	Create(ctx context.Context, term *models.AcademicTerm) error
	Update(ctx context.Context, term *models.AcademicTerm) error
}

type academicTermRepository struct {
	db *gorm.DB
}

// NewAcademicTermRepository constructs an academic term repository.
func NewAcademicTermRepository(db *gorm.DB) AcademicTermRepository {
	return &academicTermRepository{db: db}
}

func (r *academicTermRepository) FindByYearTerm(ctx context.Context, academicYear string, term int) (models.AcademicTerm, error) {
	var record models.AcademicTerm
	err := r.db.WithContext(ctx).
		Where("academic_year = ? AND term = ?", academicYear, term).
		First(&record).Error
	if err != nil {
		return models.AcademicTerm{}, err
	}

	return record, nil
}

func (r *academicTermRepository) Create(ctx context.Context, term *models.AcademicTerm) error {
	return r.db.WithContext(ctx).Create(term).Error
}

func (r *academicTermRepository) Update(ctx context.Context, term *models.AcademicTerm) error {
	return r.db.WithContext(ctx).Save(term).Error
}
