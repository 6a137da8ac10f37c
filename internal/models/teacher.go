package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Teacher represents a staff member who can be bound to class assignments.
// Synthetic teachers are placeholder records materialised by the assignment
// resolver when no real staff member is configured for a subject.
type Teacher struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EmployeeID     string    `gorm:"size:20;uniqueIndex;not null" json:"employee_id"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	Email          string    `gorm:"size:160" json:"email"`
	Phone          string    `gorm:"size:20" json:"phone"`
	Qualification  string    `gorm:"size:200" json:"qualification"`
	ClassLevelsRaw string    `gorm:"column:class_levels;type:text" json:"-"`
	IsActive       bool      `gorm:"not null;default:true;index" json:"is_active"`
	IsSynthetic    bool      `gorm:"not null;default:false" json:"is_synthetic"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Subjects       []Subject `gorm:"many2many:teacher_subjects;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"subjects"`
	ClassLevels    []string  `gorm:"-" json:"class_levels"`
}

// BeforeSave normalises the class level list before persisting.
func (t *Teacher) BeforeSave(tx *gorm.DB) error {
	t.ClassLevelsRaw = encodeClassLevels(t.ClassLevels)
	return nil
}

// AfterFind hydrates the class level list after retrieval.
func (t *Teacher) AfterFind(tx *gorm.DB) error {
	t.ClassLevels = decodeClassLevels(t.ClassLevelsRaw)
	return nil
}

// FullName returns the teacher's display name.
func (t Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// TeachesLevel reports whether the teacher's declared class levels include level.
func (t Teacher) TeachesLevel(level string) bool {
	levels := t.ClassLevels
	if len(levels) == 0 {
		levels = decodeClassLevels(t.ClassLevelsRaw)
	}
	for _, candidate := range levels {
		if candidate == level {
			return true
		}
	}
	return false
}

// QualifiedFor reports whether the teacher's subject list includes subjectID.
// The Subjects association must be preloaded by the caller.
func (t Teacher) QualifiedFor(subjectID uint) bool {
	for _, subject := range t.Subjects {
		if subject.ID == subjectID {
			return true
		}
	}
	return false
}

func encodeClassLevels(levels []string) string {
	if len(levels) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(levels))
	for _, level := range levels {
		trimmed := strings.ToUpper(strings.TrimSpace(level))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return strings.Join(cleaned, ",")
}

func decodeClassLevels(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	levels := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		levels = append(levels, trimmed)
	}
	return levels
}
