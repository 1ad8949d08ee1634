package repository

import (
	"context"
	"time"

	"github.com/NitinGurawaliya/watch-dog/internal/domain"
)

// EventUpdate carries the fields refreshed when a beacon continues an
// existing page view.
type EventUpdate struct {
	Referrer  string
	UserAgent string
	Timestamp time.Time
}

// EventRepository defines the interface for event storage operations
type EventRepository interface {
	// Create inserts a new event
	Create(ctx context.Context, event *domain.Event) error

	// Update refreshes an existing event in place. Returns
	// domain.ErrEventNotFound if the id does not exist.
	Update(ctx context.Context, id string, upd EventUpdate) error

	// FindRecentBySession returns the most recent event for
	// (projectID, sessionID) with a timestamp at or after since, or
	// (nil, nil) when the session has no event inside the window.
	FindRecentBySession(ctx context.Context, projectID, sessionID string, since time.Time) (*domain.Event, error)

	// FindRecent returns up to limit events for the project timestamped at or
	// after since, newest first.
	FindRecent(ctx context.Context, projectID string, since time.Time, limit int) ([]domain.Event, error)

	// FindInRange returns all project events with from <= timestamp <= to,
	// newest first.
	FindInRange(ctx context.Context, projectID string, from, to time.Time) ([]domain.Event, error)
}

// ProjectRepository defines the interface for project storage operations.
// Lookups return domain.ErrProjectNotFound when no row matches.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error

	FindByID(ctx context.Context, id string) (*domain.Project, error)

	// FindByIDAndUser is the ownership check: it only matches a project
	// belonging to userID.
	FindByIDAndUser(ctx context.Context, id, userID string) (*domain.Project, error)

	FindByUser(ctx context.Context, userID string) ([]domain.Project, error)

	FindByUserAndName(ctx context.Context, userID, name string) (*domain.Project, error)

	// Delete removes the project; its events go with it via the cascading
	// foreign key.
	Delete(ctx context.Context, id string) error
}
