package service

import (
	"errors"
	"fmt"
)

// ErrStudentNotFound indicates the referenced student does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrSubjectNotFound indicates the referenced subject does not exist.
var ErrSubjectNotFound = errors.New("subject not found")

// ErrTeacherNotFound indicates the referenced teacher does not exist.
var ErrTeacherNotFound = errors.New("teacher not found")

// ErrGradeNotFound indicates the grade record was not located.
var ErrGradeNotFound = errors.New("grade not found")

// ErrAssignmentNotFound indicates no class assignment covers the slot.
var ErrAssignmentNotFound = errors.New("class assignment not found")

// ErrTermNotFound indicates the academic term is not registered.
var ErrTermNotFound = errors.New("academic term not found")

// ErrDuplicateGrade indicates a grade already exists for the
// (student, subject, academic year, term) scope.
var ErrDuplicateGrade = errors.New("grade already recorded for this student, subject and term")

// ErrGradeLocked indicates the grade record is locked against modification.
var ErrGradeLocked = errors.New("grade record is locked")

// ErrTermLocked indicates the academic term is locked against grade entry.
var ErrTermLocked = errors.New("academic term is locked")

// InactiveEntityError reports a business-rule rejection caused by an
// inactive participant of the grading scope.
type InactiveEntityError struct {
	Entity string
}

func (e InactiveEntityError) Error() string {
	return fmt.Sprintf("%s is inactive", e.Entity)
}

// ResolutionError reports that class-assignment resolution could not settle
// on a teacher for the requested slot.
type ResolutionError struct {
	Reason string
	Err    error
}

func (e ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assignment resolution failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("assignment resolution failed: %s", e.Reason)
}

func (e ResolutionError) Unwrap() error {
	return e.Err
}
