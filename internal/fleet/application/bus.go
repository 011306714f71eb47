package application

import (
	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-fleet/pkg/domain"
)

// Instantiated bus types used across the fleet slice.
type (
	RegisterVehicleBus    = pkgApp.CommandBus[pkgDomain.Command[RegisterVehicleData], RegisterVehicleData]
	BoardPassengerBus     = pkgApp.CommandBus[pkgDomain.Command[BoardPassengerData], BoardPassengerData]
	DisembarkPassengerBus = pkgApp.CommandBus[pkgDomain.Command[DisembarkPassengerData], DisembarkPassengerData]

	FindVehicleBus      = pkgApp.QueryBus[pkgDomain.Query[FindVehicleData], FindVehicleData, domain.VehicleSnapshot]
	FleetStatusBus      = pkgApp.QueryBus[pkgDomain.Query[FleetStatusData], FleetStatusData, domain.FleetReport]
	PassengerHistoryBus = pkgApp.QueryBus[pkgDomain.Query[PassengerHistoryData], PassengerHistoryData, []domain.OccupancyChange]

	OccupancyEvent    = pkgDomain.Event[domain.OccupancyChange]
	OccupancyEventBus = pkgApp.EventBus[OccupancyEvent, domain.OccupancyChange]
)
