package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/kboateng/adesua-go-api/internal/dto"
	"github.com/kboateng/adesua-go-api/internal/models"
	"github.com/kboateng/adesua-go-api/internal/repository"
)

func newTermService(store *repository.Store, coordinator AuditCoordinator) TermService {
	return NewTermService(store, coordinator, validator.New(), testLogger())
}

func TestLockTermRegistersUnknownTerm(t *testing.T) {
	store, db := newEngineStore(t)
	coordinator := &fakeCoordinator{effects: okEffects()}
	svc := newTermService(store, coordinator)

	response, err := svc.LockTerm(context.Background(), dto.TermLockRequest{
		AcademicYear: "2026/2027",
		Term:         1,
	}, Actor{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)
	require.True(t, response.IsLocked)
	require.Equal(t, "2026/2027 Term 1", response.Label)

	var term models.AcademicTerm
	require.NoError(t, db.Where("academic_year = ? AND term = ?", "2026/2027", 1).First(&term).Error)
	require.True(t, term.IsLocked)
	require.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), term.StartDate.UTC())
	require.Equal(t, time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC), term.EndDate.UTC())

	require.Len(t, coordinator.events, 1)
	event := coordinator.events[0]
	require.Equal(t, models.AuditActionCreate, event.Action)
	require.Equal(t, "academic_term", event.EntityType)
}

func TestLockTermThirdTermWindow(t *testing.T) {
	store, db := newEngineStore(t)
	svc := newTermService(store, &fakeCoordinator{effects: okEffects()})

	_, err := svc.LockTerm(context.Background(), dto.TermLockRequest{
		AcademicYear: "2026/2027",
		Term:         3,
	}, Actor{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)

	var term models.AcademicTerm
	require.NoError(t, db.Where("academic_year = ? AND term = ?", "2026/2027", 3).First(&term).Error)
	require.Equal(t, time.Date(2027, time.May, 1, 0, 0, 0, 0, time.UTC), term.StartDate.UTC())
	require.Equal(t, time.Date(2027, time.August, 31, 0, 0, 0, 0, time.UTC), term.EndDate.UTC())
}

func TestUnlockUnknownTermFails(t *testing.T) {
	store, _ := newEngineStore(t)
	svc := newTermService(store, &fakeCoordinator{effects: okEffects()})

	_, err := svc.UnlockTerm(context.Background(), dto.TermLockRequest{
		AcademicYear: "2026/2027",
		Term:         2,
	}, Actor{ID: 1, Role: RoleAdmin})
	require.ErrorIs(t, err, ErrTermNotFound)
}

func TestTermLockRoundTrip(t *testing.T) {
	store, db := newEngineStore(t)
	seeded := models.AcademicTerm{
		AcademicYear: "2027/2028",
		Term:         2,
		StartDate:    time.Date(2028, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2028, time.April, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&seeded).Error)

	coordinator := &fakeCoordinator{effects: okEffects()}
	svc := newTermService(store, coordinator)
	payload := dto.TermLockRequest{AcademicYear: "2027/2028", Term: 2}

	locked, err := svc.LockTerm(context.Background(), payload, Actor{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)
	require.True(t, locked.IsLocked)
	require.Equal(t, seeded.ID, locked.ID, "locking reuses the registered term")
	require.Len(t, coordinator.events, 1)
	require.Equal(t, models.AuditActionUpdate, coordinator.events[0].Action)

	again, err := svc.LockTerm(context.Background(), payload, Actor{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)
	require.True(t, again.IsLocked)
	require.Len(t, coordinator.events, 1, "locking a locked term is idempotent")

	unlocked, err := svc.UnlockTerm(context.Background(), payload, Actor{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)
	require.False(t, unlocked.IsLocked)
	require.Len(t, coordinator.events, 2)
}

func TestTermLockValidatesPayload(t *testing.T) {
	store, _ := newEngineStore(t)
	svc := newTermService(store, &fakeCoordinator{effects: okEffects()})

	_, err := svc.LockTerm(context.Background(), dto.TermLockRequest{}, Actor{ID: 1, Role: RoleAdmin})
	var fieldErrs validator.ValidationErrors
	require.ErrorAs(t, err, &fieldErrs)

	_, err = svc.LockTerm(context.Background(), dto.TermLockRequest{
		AcademicYear: "2026-2027",
		Term:         1,
	}, Actor{ID: 1, Role: RoleAdmin})
	require.ErrorIs(t, err, ErrTermNotFound)
}
