package realtime

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NitinGurawaliya/watch-dog/internal/dto"
)

// SnapshotSource computes the live visitor snapshot for a project.
type SnapshotSource interface {
	Realtime(ctx context.Context, projectID string) (*dto.RealtimeStats, error)
}

// Broadcaster pushes recomputed snapshots down a project's open stream. It
// is invoked on the stream's tick and on demand right after ingestion, and
// is best-effort throughout: delivery failures drop the connection, they
// never propagate.
type Broadcaster struct {
	stats    SnapshotSource
	registry *Registry
	log      *zap.Logger
}

// NewBroadcaster creates a stats broadcaster
func NewBroadcaster(stats SnapshotSource, registry *Registry, log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		stats:    stats,
		registry: registry,
		log:      log,
	}
}

// Push computes the project's snapshot and delivers it to the registered
// stream, if any. All failures are logged and swallowed.
func (b *Broadcaster) Push(ctx context.Context, projectID string) {
	client, ok := b.registry.Lookup(projectID)
	if !ok {
		return
	}

	snapshot, err := b.stats.Realtime(ctx, projectID)
	if err != nil {
		b.log.Warn("Failed to compute realtime snapshot",
			zap.String("project_id", projectID),
			zap.Error(err))
		return
	}

	msg := dto.RealtimeMessage{
		Type:      dto.MessageTypeStats,
		Count:     snapshot.Count,
		Visitors:  snapshot.Visitors,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := client.Send(msg); err != nil {
		// The stream is gone or stalled. Drop it and let the dashboard
		// reconnect; no retries.
		b.log.Info("Dropping unresponsive realtime stream",
			zap.String("project_id", projectID),
			zap.Error(err))
		b.registry.Unregister(projectID, client)
		client.Close()
	}
}
