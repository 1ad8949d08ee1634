package domain

import "errors"

var (
	// ErrProjectNotFound covers both a genuinely unknown project id and a
	// project not owned by the requesting user; callers must not be able to
	// distinguish the two.
	ErrProjectNotFound = errors.New("project not found")

	ErrEventNotFound = errors.New("event not found")

	// ErrDuplicateProjectName is returned when a user already has a project
	// with the requested name.
	ErrDuplicateProjectName = errors.New("project with this name already exists")
)
