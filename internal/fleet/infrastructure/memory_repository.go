package infrastructure

import (
	"context"

	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
)

// InMemoryVehicleRepository keeps vehicles in a domain.Fleet. Vehicles hold
// live seat state and a registry pointer, so they are never serialized.
type InMemoryVehicleRepository struct {
	fleet  *domain.Fleet
	logger pkgApp.AppLogger
}

func NewInMemoryVehicleRepository(logger pkgApp.AppLogger) *InMemoryVehicleRepository {
	return &InMemoryVehicleRepository{
		fleet:  domain.NewFleet(),
		logger: logger,
	}
}

func (r *InMemoryVehicleRepository) Save(ctx context.Context, vehicle *domain.Vehicle) error {
	if err := r.fleet.Register(vehicle); err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to save vehicle", err, nil)
		return err
	}

	pkgApp.LogDebug(ctx, r.logger, "vehicle saved", map[string]interface{}{
		"vehicle_id": vehicle.ID(),
	})
	return nil
}

func (r *InMemoryVehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	vehicle, err := r.fleet.Find(id)
	if err != nil {
		pkgApp.LogDebug(ctx, r.logger, "vehicle not found", map[string]interface{}{"vehicle_id": id})
		return nil, err
	}
	return vehicle, nil
}

func (r *InMemoryVehicleRepository) FindAll(context.Context) ([]*domain.Vehicle, error) {
	return r.fleet.Vehicles(), nil
}

// Fleet exposes the underlying aggregate for reporting.
func (r *InMemoryVehicleRepository) Fleet() *domain.Fleet {
	return r.fleet
}
