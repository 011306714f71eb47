package infrastructure

import (
	"context"
	"sync"

	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
)

type InMemoryOccupancyJournal struct {
	mu      sync.RWMutex
	changes map[string][]domain.OccupancyChange
	logger  pkgApp.AppLogger
}

func NewInMemoryOccupancyJournal(logger pkgApp.AppLogger) *InMemoryOccupancyJournal {
	return &InMemoryOccupancyJournal{
		changes: make(map[string][]domain.OccupancyChange),
		logger:  logger,
	}
}

func (j *InMemoryOccupancyJournal) Record(ctx context.Context, change domain.OccupancyChange) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.changes[change.PassengerName] = append(j.changes[change.PassengerName], change)
	pkgApp.LogDebug(ctx, j.logger, "occupancy change recorded", map[string]interface{}{
		"passenger": change.PassengerName,
		"action":    change.Action,
	})
	return nil
}

func (j *InMemoryOccupancyJournal) History(_ context.Context, passengerName string) ([]domain.OccupancyChange, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	history := j.changes[passengerName]
	out := make([]domain.OccupancyChange, len(history))
	copy(out, history)
	return out, nil
}
