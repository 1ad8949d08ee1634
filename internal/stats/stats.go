// Package stats aggregates stored events into the dashboard's views.
package stats

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/dto"
	"github.com/NitinGurawaliya/watch-dog/internal/repository"
)

const (
	// realtimeWindow is the trailing span counted as "currently live".
	realtimeWindow = time.Minute

	// realtimeCap bounds the rows considered for one snapshot.
	realtimeCap = 100

	// topGroupLimit caps the country and referrer breakdowns.
	topGroupLimit = 10

	// directReferrer labels events with no usable referrer.
	directReferrer = "Direct"
)

// Service computes aggregated statistics from the event store.
type Service struct {
	events repository.EventRepository
	log    *zap.Logger
}

// NewService creates a stats service
func NewService(events repository.EventRepository, log *zap.Logger) *Service {
	return &Service{events: events, log: log}
}

// Realtime returns the distinct visitors seen in the trailing minute,
// newest first, one entry per visitor key.
func (s *Service) Realtime(ctx context.Context, projectID string) (*dto.RealtimeStats, error) {
	since := time.Now().UTC().Add(-realtimeWindow)
	events, err := s.events.FindRecent(ctx, projectID, since, realtimeCap)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent events: %w", err)
	}

	seen := make(map[string]struct{})
	visitors := []dto.Visitor{}
	for i := range events {
		event := &events[i]
		key := event.VisitorKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		visitors = append(visitors, dto.Visitor{
			ID:        event.ID,
			PageURL:   event.PageURL,
			Referrer:  event.Referrer,
			Country:   event.Country,
			City:      event.City,
			UserAgent: event.UserAgent,
			Timestamp: event.Timestamp,
			SessionID: event.SessionID,
			IP:        event.IP,
		})
	}

	return &dto.RealtimeStats{Count: len(seen), Visitors: visitors}, nil
}

// Daily returns unique visitor and page view counts per day over the last
// days days, oldest first, with empty days zero-filled. Dates are UTC.
func (s *Service) Daily(ctx context.Context, projectID string, days int) ([]dto.DailyStats, error) {
	events, err := s.findDaysBack(ctx, projectID, days)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		visitors  map[string]struct{}
		pageViews int
	}

	now := time.Now().UTC()
	order := make([]string, 0, days)
	buckets := make(map[string]*bucket, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		order = append(order, date)
		buckets[date] = &bucket{visitors: make(map[string]struct{})}
	}

	for i := range events {
		event := &events[i]
		date := event.Timestamp.UTC().Format("2006-01-02")
		b, ok := buckets[date]
		if !ok {
			continue
		}
		b.visitors[event.VisitorKey()] = struct{}{}
		b.pageViews++
	}

	result := make([]dto.DailyStats, 0, days)
	for _, date := range order {
		b := buckets[date]
		result = append(result, dto.DailyStats{
			Date:      date,
			Visitors:  len(b.visitors),
			PageViews: b.pageViews,
		})
	}

	return result, nil
}

// Countries returns the top countries by unique visitors over the last days
// days; percentage is each country's share of events in the range.
func (s *Service) Countries(ctx context.Context, projectID string, days int) ([]dto.CountryStats, error) {
	events, err := s.findDaysBack(ctx, projectID, days)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]map[string]struct{})
	for i := range events {
		event := &events[i]
		country := event.Country
		if country == "" {
			country = domain.UnknownLocation
		}
		if groups[country] == nil {
			groups[country] = make(map[string]struct{})
		}
		groups[country][event.VisitorKey()] = struct{}{}
	}

	result := make([]dto.CountryStats, 0, len(groups))
	for country, visitors := range groups {
		result = append(result, dto.CountryStats{
			Country:    country,
			Visitors:   len(visitors),
			Percentage: percentage(len(visitors), len(events)),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Visitors > result[j].Visitors
	})
	if len(result) > topGroupLimit {
		result = result[:topGroupLimit]
	}
	return result, nil
}

// Referrers returns the top referrer hostnames by unique visitors over the
// last days days. Empty or unparseable referrers count as "Direct".
func (s *Service) Referrers(ctx context.Context, projectID string, days int) ([]dto.ReferrerStats, error) {
	events, err := s.findDaysBack(ctx, projectID, days)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]map[string]struct{})
	for i := range events {
		event := &events[i]
		referrer := referrerHost(event.Referrer)
		if groups[referrer] == nil {
			groups[referrer] = make(map[string]struct{})
		}
		groups[referrer][event.VisitorKey()] = struct{}{}
	}

	result := make([]dto.ReferrerStats, 0, len(groups))
	for referrer, visitors := range groups {
		result = append(result, dto.ReferrerStats{
			Referrer:   referrer,
			Visitors:   len(visitors),
			Percentage: percentage(len(visitors), len(events)),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Visitors > result[j].Visitors
	})
	if len(result) > topGroupLimit {
		result = result[:topGroupLimit]
	}
	return result, nil
}

func (s *Service) findDaysBack(ctx context.Context, projectID string, days int) ([]domain.Event, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)
	events, err := s.events.FindInRange(ctx, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load events in range: %w", err)
	}
	return events, nil
}

// referrerHost reduces a referrer URL to its hostname.
func referrerHost(referrer string) string {
	if referrer == "" {
		return directReferrer
	}
	parsed, err := url.Parse(referrer)
	if err != nil || parsed.Hostname() == "" {
		return directReferrer
	}
	return parsed.Hostname()
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
