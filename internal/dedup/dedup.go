// Package dedup decides whether an incoming beacon continues an existing
// page view or starts a new one, and applies the matching write.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/repository"
)

// DefaultWindow is the lookback span within which a beacon on the same
// session counts as a continuation rather than a new visit.
const DefaultWindow = 5 * time.Minute

// Beacon carries the fields of one tracking request after validation and
// geo resolution.
type Beacon struct {
	ProjectID string
	SessionID string
	PageURL   string
	Referrer  string
	UserAgent string
	IP        string
	Country   string
	City      string
}

// Outcome reports which write was applied for a beacon.
type Outcome struct {
	EventID    string
	Updated    bool
	PageChange bool
}

// Deduplicator applies the session continuation policy against the event
// store.
type Deduplicator struct {
	events repository.EventRepository
	window time.Duration
	locks  *sessionLocks
	log    *zap.Logger
}

// New creates a Deduplicator. A non-positive window falls back to
// DefaultWindow.
func New(events repository.EventRepository, window time.Duration, log *zap.Logger) *Deduplicator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Deduplicator{
		events: events,
		window: window,
		locks:  newSessionLocks(),
		log:    log,
	}
}

// Decide persists the beacon as either a fresh event or an in-place refresh
// of the session's current one.
//
// Sessions never terminate explicitly; staleness is purely window based. A
// session silent for longer than the window that resumes simply starts a new
// event under the same session id.
func (d *Deduplicator) Decide(ctx context.Context, b Beacon) (*Outcome, error) {
	// No session id means no continuity to check: always a new event.
	if b.SessionID == "" {
		return d.create(ctx, b, false)
	}

	// Serialize find-then-write per (project, session) so two concurrent
	// beacons cannot both observe "no recent event" and double-insert.
	key := b.ProjectID + "|" + b.SessionID
	d.locks.lock(key)
	defer d.locks.unlock(key)

	since := time.Now().UTC().Add(-d.window)
	existing, err := d.events.FindRecentBySession(ctx, b.ProjectID, b.SessionID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session event: %w", err)
	}

	if existing == nil {
		return d.create(ctx, b, false)
	}

	if existing.PageURL == b.PageURL {
		// Still on the same page: refresh the existing event.
		upd := repository.EventUpdate{
			Referrer:  b.Referrer,
			UserAgent: b.UserAgent,
			Timestamp: time.Now().UTC(),
		}
		if err := d.events.Update(ctx, existing.ID, upd); err != nil {
			return nil, fmt.Errorf("failed to refresh session event: %w", err)
		}

		return &Outcome{EventID: existing.ID, Updated: true}, nil
	}

	// Same session, different page: an intra-session navigation. The old
	// event stays untouched.
	return d.create(ctx, b, true)
}

func (d *Deduplicator) create(ctx context.Context, b Beacon, pageChange bool) (*Outcome, error) {
	event := &domain.Event{
		ID:        uuid.NewString(),
		ProjectID: b.ProjectID,
		SessionID: b.SessionID,
		PageURL:   b.PageURL,
		Referrer:  b.Referrer,
		UserAgent: b.UserAgent,
		IP:        b.IP,
		Country:   b.Country,
		City:      b.City,
		Timestamp: time.Now().UTC(),
	}

	if err := d.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	d.log.Debug("Event created",
		zap.String("event_id", event.ID),
		zap.String("project_id", b.ProjectID),
		zap.Bool("page_change", pageChange))

	return &Outcome{EventID: event.ID, PageChange: pageChange}, nil
}
