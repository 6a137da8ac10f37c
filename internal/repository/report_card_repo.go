package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kboateng/adesua-go-api/internal/models"
)

// ReportCardRepository persists aggregated term results.
type ReportCardRepository interface {
	FindByScope(ctx context.Context, studentID uint, academicYear string, term int) (models.ReportCard, error)
	// Upsert writes the report card for its (student, year, term) scope,
	// replacing the computed columns when a row already exists.
	Upsert(ctx context.Context, card *models.ReportCard) error
}

type reportCardRepository struct {
	db *gorm.DB
}

// NewReportCardRepository constructs a report card repository.
func NewReportCardRepository(db *gorm.DB) ReportCardRepository {
	return &reportCardRepository{db: db}
}

func (r *reportCardRepository) FindByScope(ctx context.Context, studentID uint, academicYear string, term int) (models.ReportCard, error) {
	var card models.ReportCard
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND academic_year = ? AND term = ?", studentID, academicYear, term).
		Preload("Student").
		First(&card).Error
	if err != nil {
		return models.ReportCard{}, err
	}

	return card, nil
}

func (r *reportCardRepository) Upsert(ctx context.Context, card *models.ReportCard) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "academic_year"}, {Name: "term"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"average_score", "overall_grade", "generated_by_id", "updated_at",
			}),
		}).
		Create(card).Error
}
