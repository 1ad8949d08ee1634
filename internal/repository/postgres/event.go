package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/domain"
	"github.com/NitinGurawaliya/watch-dog/internal/repository"
)

// EventRepository implements repository.EventRepository for Postgres
type EventRepository struct {
	client *Client
	log    *zap.Logger
}

var _ repository.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new Postgres event repository
func NewEventRepository(client *Client, log *zap.Logger) *EventRepository {
	return &EventRepository{client: client, log: log}
}

const eventColumns = `id, project_id, session_id, page_url, referrer, user_agent, ip, country, city, timestamp`

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.client.DB().ExecContext(ctx, query,
		event.ID,
		event.ProjectID,
		event.SessionID,
		event.PageURL,
		event.Referrer,
		event.UserAgent,
		event.IP,
		event.Country,
		event.City,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

func (r *EventRepository) Update(ctx context.Context, id string, upd repository.EventUpdate) error {
	query := `
		UPDATE events
		SET referrer = $2, user_agent = $3, timestamp = $4
		WHERE id = $1
	`
	res, err := r.client.DB().ExecContext(ctx, query, id, upd.Referrer, upd.UserAgent, upd.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

func (r *EventRepository) FindRecentBySession(ctx context.Context, projectID, sessionID string, since time.Time) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE project_id = $1 AND session_id = $2 AND timestamp >= $3
		ORDER BY timestamp DESC
		LIMIT 1
	`
	row := r.client.DB().QueryRowContext(ctx, query, projectID, sessionID, since)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		// Absence is a normal outcome here, not an error.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recent session event: %w", err)
	}

	return event, nil
}

func (r *EventRepository) FindRecent(ctx context.Context, projectID string, since time.Time, limit int) ([]domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE project_id = $1 AND timestamp >= $2
		ORDER BY timestamp DESC
		LIMIT $3
	`
	rows, err := r.client.DB().QueryContext(ctx, query, projectID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}

	return collectEvents(rows)
}

func (r *EventRepository) FindInRange(ctx context.Context, projectID string, from, to time.Time) ([]domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE project_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp DESC
	`
	rows, err := r.client.DB().QueryContext(ctx, query, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query events in range: %w", err)
	}

	return collectEvents(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var event domain.Event
	err := row.Scan(
		&event.ID,
		&event.ProjectID,
		&event.SessionID,
		&event.PageURL,
		&event.Referrer,
		&event.UserAgent,
		&event.IP,
		&event.Country,
		&event.City,
		&event.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func collectEvents(rows *sql.Rows) ([]domain.Event, error) {
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}
