package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/cache"
	"github.com/NitinGurawaliya/watch-dog/internal/dedup"
	"github.com/NitinGurawaliya/watch-dog/internal/geo"
	"github.com/NitinGurawaliya/watch-dog/internal/repository"
)

// TrackInput is one validated beacon plus what the handler read from the
// request's proxy headers.
type TrackInput struct {
	ProjectID string
	PageURL   string
	Referrer  string
	UserAgent string
	SessionID string
	IP        string
	Country   string
	City      string
}

// TrackService runs a beacon through project lookup, geo resolution,
// session deduplication, and the post-ingest broadcast.
type TrackService struct {
	projects    repository.ProjectRepository
	cache       cache.ProjectCache
	dedup       Deduper
	resolver    geo.Resolver
	broadcaster Pusher
	log         *zap.Logger
}

var _ TrackServicer = (*TrackService)(nil)

// NewTrackService creates a new track service
func NewTrackService(
	projects repository.ProjectRepository,
	projectCache cache.ProjectCache,
	deduper Deduper,
	resolver geo.Resolver,
	broadcaster Pusher,
	log *zap.Logger,
) *TrackService {
	return &TrackService{
		projects:    projects,
		cache:       projectCache,
		dedup:       deduper,
		resolver:    resolver,
		broadcaster: broadcaster,
		log:         log,
	}
}

// Track ingests one beacon. It returns domain.ErrProjectNotFound for an
// unknown project; any other error means the store write failed. Real-time
// delivery failures never surface here.
func (s *TrackService) Track(ctx context.Context, in TrackInput) (*dedup.Outcome, error) {
	if err := s.verifyProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	country, city := s.resolveLocation(ctx, in)

	outcome, err := s.dedup.Decide(ctx, dedup.Beacon{
		ProjectID: in.ProjectID,
		SessionID: in.SessionID,
		PageURL:   in.PageURL,
		Referrer:  in.Referrer,
		UserAgent: in.UserAgent,
		IP:        in.IP,
		Country:   country,
		City:      city,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest beacon: %w", err)
	}

	// Best-effort: reflect the new activity on the dashboard immediately
	// instead of waiting for the next tick.
	s.broadcaster.Push(ctx, in.ProjectID)

	return outcome, nil
}

// verifyProject checks project existence through the cache first, falling
// back to the store and repopulating on a miss.
func (s *TrackService) verifyProject(ctx context.Context, projectID string) error {
	cached, err := s.cache.Get(ctx, projectID)
	if err != nil {
		// Cache trouble must not take down ingestion.
		s.log.Warn("Project cache lookup failed",
			zap.String("project_id", projectID), zap.Error(err))
	}
	if cached != nil {
		return nil
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.cache.Set(ctx, project); err != nil {
		s.log.Warn("Project cache write failed",
			zap.String("project_id", projectID), zap.Error(err))
	}
	return nil
}

// resolveLocation keeps header-derived values when present and only then
// consults the resolver. Lookup failures degrade to Unknown.
func (s *TrackService) resolveLocation(ctx context.Context, in TrackInput) (string, string) {
	country, city := in.Country, in.City
	if country == "" {
		country = geo.Unknown
	}
	if city == "" {
		city = geo.Unknown
	}

	if country != geo.Unknown || in.IP == geo.Unknown {
		return country, city
	}

	location, err := s.resolver.Resolve(ctx, in.IP)
	if err != nil {
		s.log.Debug("IP geolocation failed",
			zap.String("ip", in.IP), zap.Error(err))
		return country, city
	}

	return location.Country, location.City
}
