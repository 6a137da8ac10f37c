package service

import (
	"context"
	"testing"

	"github.com/kboateng/adesua-go-api/internal/models"
)

func TestZZDebugDormantTeacherPreload(t *testing.T) {
	store, db := newEngineStore(t)
	subject := makeSubject(t, db, "ZZ-ENG")
	teacher := makeTeacher(t, db, "ZZ-T-002", nil, subject)
	seeded := makeAssignment(t, db, models.ClassLevelJHS2, subject.ID, teacher.ID, "2024/2025")
	deactivate(t, db, &seeded)
	deactivate(t, db, &teacher)

	var raw models.Teacher
	if err := db.First(&raw, teacher.ID).Error; err != nil {
		t.Fatalf("load teacher: %v", err)
	}
	t.Logf("teacher row after deactivate: id=%d is_active=%v", raw.ID, raw.IsActive)

	dormant, err := store.Assignments.FindAny(context.Background(), models.ClassLevelJHS2, subject.ID, "2024/2025")
	if err != nil {
		t.Fatalf("FindAny: %v", err)
	}
	t.Logf("dormant: id=%d is_active=%v teacher.id=%d teacher.is_active=%v", dormant.ID, dormant.IsActive, dormant.Teacher.ID, dormant.Teacher.IsActive)

	dormant.IsActive = true
	if err := store.Assignments.Update(context.Background(), &dormant); err != nil {
		t.Fatalf("Update: %v", err)
	}
	t.Logf("after update: teacher.id=%d teacher.is_active=%v", dormant.Teacher.ID, dormant.Teacher.IsActive)

	var raw2 models.Teacher
	if err := db.First(&raw2, teacher.ID).Error; err != nil {
		t.Fatalf("reload teacher: %v", err)
	}
	t.Logf("teacher row after assignment update: id=%d is_active=%v", raw2.ID, raw2.IsActive)
}
