package service

import "strings"

// Roles recognised by the engine. Authorization happens at the middleware
// boundary; services use the role only for attribution and teacher identity.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// Actor identifies the authenticated principal performing an operation.
// TeacherID is set when the principal is a teacher, so grade mutations can
// resolve against the acting teacher.
type Actor struct {
	ID        uint
	Role      string
	TeacherID *uint
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return normalizeActorRole(a.Role) == RoleAdmin
}

// IsTeacher reports whether the actor carries the teacher role.
func (a Actor) IsTeacher() bool {
	return normalizeActorRole(a.Role) == RoleTeacher
}

func normalizeActorRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == "" {
		return "system"
	}
	return r
}
