package fleet

import (
	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-fleet/internal/fleet/application"
	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	"github.com/mateusmacedo/go-fleet/internal/fleet/infrastructure"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-fleet/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-fleet/pkg/infrastructure"
	"github.com/mateusmacedo/go-fleet/pkg/infrastructure/tracing"
)

// Dependencies configures a FleetSlice. Only Logger is required; the rest
// default to in-process implementations.
type Dependencies struct {
	Logger      pkgApp.AppLogger
	IDGenerator pkgDomain.IDGenerator[string]
	EventBus    application.OccupancyEventBus
	Repository  domain.VehicleRepository
	Journal     domain.OccupancyJournal
	Registry    *domain.OccupancyRegistry
}

type FleetSlice struct {
	buses       infrastructure.FleetBuses
	registry    *domain.OccupancyRegistry
	httpHandler *infrastructure.FleetHTTPHandler
}

func NewFleetSlice(deps Dependencies) *FleetSlice {
	logger := deps.Logger
	if deps.IDGenerator == nil {
		deps.IDGenerator = pkgInfra.GenerateUUID
	}
	if deps.Registry == nil {
		deps.Registry = domain.NewOccupancyRegistry()
	}
	if deps.Repository == nil {
		deps.Repository = infrastructure.NewInMemoryVehicleRepository(logger)
	}
	if deps.Journal == nil {
		deps.Journal = infrastructure.NewInMemoryOccupancyJournal(logger)
	}
	if deps.EventBus == nil {
		deps.EventBus = pkgInfra.NewSimpleEventBus[application.OccupancyEvent, domain.OccupancyChange](logger)
	}

	buses := infrastructure.FleetBuses{
		RegisterVehicle: tracing.NewTracedCommandBus(
			pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.RegisterVehicleData], application.RegisterVehicleData](logger)),
		BoardPassenger: tracing.NewTracedCommandBus(
			pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.BoardPassengerData], application.BoardPassengerData](logger)),
		DisembarkPassenger: tracing.NewTracedCommandBus(
			pkgInfra.NewSimpleCommandBus[pkgDomain.Command[application.DisembarkPassengerData], application.DisembarkPassengerData](logger)),
		FindVehicle:      pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FindVehicleData], application.FindVehicleData, domain.VehicleSnapshot](),
		FleetStatus:      pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.FleetStatusData], application.FleetStatusData, domain.FleetReport](),
		PassengerHistory: pkgInfra.NewSimpleQueryBus[pkgDomain.Query[application.PassengerHistoryData], application.PassengerHistoryData, []domain.OccupancyChange](),
	}

	buses.RegisterVehicle.RegisterHandler(application.RegisterVehicleCommand,
		application.NewRegisterVehicleHandler(deps.Repository, deps.Registry, deps.IDGenerator, logger))
	buses.BoardPassenger.RegisterHandler(application.BoardPassengerCommand,
		application.NewBoardPassengerHandler(deps.EventBus, deps.Repository, logger))
	buses.DisembarkPassenger.RegisterHandler(application.DisembarkPassengerCommand,
		application.NewDisembarkPassengerHandler(deps.EventBus, deps.Repository, logger))

	buses.FindVehicle.RegisterHandler(application.FindVehicleQuery, application.NewFindVehicleHandler(deps.Repository, logger))
	buses.FleetStatus.RegisterHandler(application.FleetStatusQuery, application.NewFleetStatusHandler(deps.Repository, logger))
	buses.PassengerHistory.RegisterHandler(application.PassengerHistoryQuery, application.NewPassengerHistoryHandler(deps.Journal, logger))

	journalHandler := application.NewOccupancyJournalHandler(deps.Journal, logger)
	logHandler := application.NewOccupancyLogHandler(logger)
	for _, name := range []string{application.PassengerBoardedEvent, application.PassengerDisembarkedEvent} {
		deps.EventBus.RegisterHandler(name, journalHandler)
		deps.EventBus.RegisterHandler(name, logHandler)
	}

	return &FleetSlice{
		buses:       buses,
		registry:    deps.Registry,
		httpHandler: infrastructure.NewFleetHTTPHandler(buses, deps.IDGenerator, logger),
	}
}

// Buses returns the slice's command and query buses for non-HTTP callers.
func (s *FleetSlice) Buses() infrastructure.FleetBuses {
	return s.buses
}

func (s *FleetSlice) Registry() *domain.OccupancyRegistry {
	return s.registry
}

func (s *FleetSlice) RegisterRoutes(router chi.Router) {
	s.httpHandler.RegisterRoutes(router)
}
