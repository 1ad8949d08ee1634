package service

import (
	"context"

	"github.com/NitinGurawaliya/watch-dog/internal/dedup"
	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/dto"
)

// TrackServicer defines the interface for beacon ingestion
type TrackServicer interface {
	Track(ctx context.Context, in TrackInput) (*dedup.Outcome, error)
}

// ProjectServicer defines the interface for project operations
type ProjectServicer interface {
	Create(ctx context.Context, userID, name string) (*domain.Project, error)
	List(ctx context.Context, userID string) ([]domain.Project, error)
	Delete(ctx context.Context, userID, projectID string) error

	// VerifyOwner returns the project only when it belongs to userID,
	// domain.ErrProjectNotFound otherwise.
	VerifyOwner(ctx context.Context, projectID, userID string) (*domain.Project, error)
}

// StatsProvider defines the interface for the dashboard's aggregated views
type StatsProvider interface {
	Realtime(ctx context.Context, projectID string) (*dto.RealtimeStats, error)
	Daily(ctx context.Context, projectID string, days int) ([]dto.DailyStats, error)
	Countries(ctx context.Context, projectID string, days int) ([]dto.CountryStats, error)
	Referrers(ctx context.Context, projectID string, days int) ([]dto.ReferrerStats, error)
}

// Deduper is the slice of the deduplicator the track service needs.
type Deduper interface {
	Decide(ctx context.Context, b dedup.Beacon) (*dedup.Outcome, error)
}

// Pusher triggers an on-demand broadcast after ingestion.
type Pusher interface {
	Push(ctx context.Context, projectID string)
}
