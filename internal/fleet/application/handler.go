package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-fleet/pkg/domain"
)

type registerVehicleHandler struct {
	repository  domain.VehicleRepository
	registry    *domain.OccupancyRegistry
	idGenerator pkgDomain.IDGenerator[string]
	logger      pkgApp.AppLogger
}

func (h *registerVehicleHandler) Handle(ctx context.Context, command pkgDomain.Command[RegisterVehicleData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	kind, err := domain.ParseKind(data.Kind)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "invalid vehicle kind", err, map[string]interface{}{"kind": data.Kind})
		return err
	}

	capacity := data.Capacity
	switch {
	case capacity < 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", domain.ErrInvalidInput, capacity)
	case capacity == 0:
		capacity = kind.DefaultCapacity()
	}

	roles := make([]domain.Role, 0, len(data.AcceptedRoles))
	for _, r := range data.AcceptedRoles {
		role, err := domain.ParseRole(r)
		if err != nil {
			return err
		}
		roles = append(roles, role)
	}

	id := data.VehicleID
	if id == "" {
		id = h.idGenerator()
	}

	vehicle, err := domain.NewVehicle(kind, capacity, h.registry,
		domain.WithID(id),
		domain.WithRolePolicy(domain.AcceptRoles(roles...)),
	)
	if err != nil {
		return err
	}

	if err := h.repository.Save(ctx, vehicle); err != nil {
		pkgApp.LogError(ctx, h.logger, "failed to save vehicle", err, map[string]interface{}{"vehicle_id": id})
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "vehicle registered", map[string]interface{}{
		"vehicle_id": id,
		"kind":       kind,
		"capacity":   capacity,
	})
	return nil
}

func NewRegisterVehicleHandler(repo domain.VehicleRepository, registry *domain.OccupancyRegistry, idGenerator pkgDomain.IDGenerator[string], logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[RegisterVehicleData], RegisterVehicleData] {
	return &registerVehicleHandler{
		repository:  repo,
		registry:    registry,
		idGenerator: idGenerator,
		logger:      logger,
	}
}

type boardPassengerHandler struct {
	eventBus   OccupancyEventBus
	repository domain.VehicleRepository
	logger     pkgApp.AppLogger
	now        func() time.Time
}

func (h *boardPassengerHandler) Handle(ctx context.Context, command pkgDomain.Command[BoardPassengerData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	role, err := domain.ParseRole(data.Role)
	if err != nil {
		return err
	}
	passenger, err := domain.NewPassengerWithRole(data.PassengerName, role)
	if err != nil {
		return err
	}

	vehicle, err := h.repository.FindByID(ctx, data.VehicleID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "vehicle lookup failed", err, map[string]interface{}{"vehicle_id": data.VehicleID})
		return err
	}

	occupied, err := vehicle.BoardAndCount(passenger)
	if err != nil {
		logRefusal(ctx, h.logger, "boarding refused", err, map[string]interface{}{
			"vehicle_id": data.VehicleID,
			"passenger":  data.PassengerName,
		})
		return err
	}

	change := newOccupancyChange(vehicle, passenger, domain.ActionBoarded, occupied, h.now())
	pkgApp.LogInfo(ctx, h.logger, "passenger boarded", map[string]interface{}{
		"vehicle_id": change.VehicleID,
		"passenger":  change.PassengerName,
		"occupied":   change.Occupied,
	})
	publish(ctx, h.eventBus, h.logger, NewPassengerBoardedEvent(change))
	return nil
}

func NewBoardPassengerHandler(eventBus OccupancyEventBus, repo domain.VehicleRepository, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[BoardPassengerData], BoardPassengerData] {
	return &boardPassengerHandler{
		eventBus:   eventBus,
		repository: repo,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type disembarkPassengerHandler struct {
	eventBus   OccupancyEventBus
	repository domain.VehicleRepository
	logger     pkgApp.AppLogger
	now        func() time.Time
}

func (h *disembarkPassengerHandler) Handle(ctx context.Context, command pkgDomain.Command[DisembarkPassengerData]) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return ctx.Err()
	}

	data := command.Payload()
	vehicle, err := h.repository.FindByID(ctx, data.VehicleID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "vehicle lookup failed", err, map[string]interface{}{"vehicle_id": data.VehicleID})
		return err
	}

	// Callers only know the name; the seated record is what Disembark matches.
	fields := map[string]interface{}{
		"vehicle_id": data.VehicleID,
		"passenger":  data.PassengerName,
	}
	passenger, ok := vehicle.SeatedPassenger(data.PassengerName)
	if !ok {
		err := fmt.Errorf("%w: %s is not on %s", domain.ErrNotSeatedHere, data.PassengerName, data.VehicleID)
		logRefusal(ctx, h.logger, "disembark refused", err, fields)
		return err
	}
	occupied, err := vehicle.DisembarkAndCount(passenger)
	if err != nil {
		logRefusal(ctx, h.logger, "disembark refused", err, fields)
		return err
	}

	change := newOccupancyChange(vehicle, passenger, domain.ActionDisembarked, occupied, h.now())
	pkgApp.LogInfo(ctx, h.logger, "passenger disembarked", map[string]interface{}{
		"vehicle_id": change.VehicleID,
		"passenger":  change.PassengerName,
		"occupied":   change.Occupied,
	})
	publish(ctx, h.eventBus, h.logger, NewPassengerDisembarkedEvent(change))
	return nil
}

func NewDisembarkPassengerHandler(eventBus OccupancyEventBus, repo domain.VehicleRepository, logger pkgApp.AppLogger) pkgApp.CommandHandler[pkgDomain.Command[DisembarkPassengerData], DisembarkPassengerData] {
	return &disembarkPassengerHandler{
		eventBus:   eventBus,
		repository: repo,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// logRefusal logs expected seat outcomes at info level. Anything else is an
// error.
func logRefusal(ctx context.Context, logger pkgApp.AppLogger, msg string, err error, fields map[string]interface{}) {
	if !isSeatRefusal(err) {
		pkgApp.LogError(ctx, logger, msg, err, fields)
		return
	}
	withReason := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		withReason[k] = v
	}
	withReason["reason"] = err.Error()
	pkgApp.LogInfo(ctx, logger, msg, withReason)
}

func isSeatRefusal(err error) bool {
	for _, target := range []error{
		domain.ErrCapacityExceeded,
		domain.ErrDuplicateOccupancy,
		domain.ErrNotSeatedHere,
		domain.ErrRoleNotAccepted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func newOccupancyChange(v *domain.Vehicle, p *domain.Passenger, action domain.OccupancyAction, occupied int, at time.Time) domain.OccupancyChange {
	return domain.OccupancyChange{
		VehicleID:     v.ID(),
		VehicleKind:   v.Kind(),
		PassengerName: p.Name(),
		Role:          p.Role(),
		Action:        action,
		Occupied:      occupied,
		Capacity:      v.MaxSeats(),
		OccurredAt:    at,
	}
}

// publish never fails the command: the seat change has already happened.
func publish(ctx context.Context, bus OccupancyEventBus, logger pkgApp.AppLogger, event OccupancyEvent) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, event); err != nil {
		pkgApp.LogError(ctx, logger, "failed to publish event", err, map[string]interface{}{"event": event.EventName()})
	}
}

type findVehicleHandler struct {
	repository domain.VehicleRepository
	logger     pkgApp.AppLogger
}

func (h *findVehicleHandler) Handle(ctx context.Context, query pkgDomain.Query[FindVehicleData]) (domain.VehicleSnapshot, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return domain.VehicleSnapshot{}, ctx.Err()
	}

	data := query.Payload()
	vehicle, err := h.repository.FindByID(ctx, data.VehicleID)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "vehicle lookup failed", err, map[string]interface{}{"vehicle_id": data.VehicleID})
		return domain.VehicleSnapshot{}, err
	}
	return vehicle.Snapshot(), nil
}

func NewFindVehicleHandler(repo domain.VehicleRepository, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FindVehicleData], FindVehicleData, domain.VehicleSnapshot] {
	return &findVehicleHandler{
		repository: repo,
		logger:     logger,
	}
}

type fleetStatusHandler struct {
	repository domain.VehicleRepository
	logger     pkgApp.AppLogger
}

func (h *fleetStatusHandler) Handle(ctx context.Context, _ pkgDomain.Query[FleetStatusData]) (domain.FleetReport, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return domain.FleetReport{}, ctx.Err()
	}

	vehicles, err := h.repository.FindAll(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "failed to list vehicles", err, nil)
		return domain.FleetReport{}, err
	}

	report := domain.NewFleetReport(vehicles)
	pkgApp.LogDebug(ctx, h.logger, "fleet status computed", map[string]interface{}{
		"vehicles":       len(report.Vehicles),
		"total_occupied": report.TotalOccupied,
		"total_capacity": report.TotalCapacity,
	})
	return report, nil
}

func NewFleetStatusHandler(repo domain.VehicleRepository, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[FleetStatusData], FleetStatusData, domain.FleetReport] {
	return &fleetStatusHandler{
		repository: repo,
		logger:     logger,
	}
}

type passengerHistoryHandler struct {
	journal domain.OccupancyJournal
	logger  pkgApp.AppLogger
}

func (h *passengerHistoryHandler) Handle(ctx context.Context, query pkgDomain.Query[PassengerHistoryData]) ([]domain.OccupancyChange, error) {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return nil, ctx.Err()
	}

	data := query.Payload()
	history, err := h.journal.History(ctx, data.PassengerName)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "failed to read journal", err, map[string]interface{}{"passenger": data.PassengerName})
		return nil, err
	}
	return history, nil
}

func NewPassengerHistoryHandler(journal domain.OccupancyJournal, logger pkgApp.AppLogger) pkgApp.QueryHandler[pkgDomain.Query[PassengerHistoryData], PassengerHistoryData, []domain.OccupancyChange] {
	return &passengerHistoryHandler{
		journal: journal,
		logger:  logger,
	}
}

// occupancyJournalHandler appends every occupancy change to the journal.
type occupancyJournalHandler struct {
	journal domain.OccupancyJournal
	logger  pkgApp.AppLogger
}

func (h *occupancyJournalHandler) Handle(ctx context.Context, event OccupancyEvent) error {
	if ctx.Err() != nil {
		pkgApp.LogError(ctx, h.logger, "context cancelled", ctx.Err(), nil)
		return ctx.Err()
	}

	if err := h.journal.Record(ctx, event.Payload()); err != nil {
		pkgApp.LogError(ctx, h.logger, "failed to record occupancy change", err, map[string]interface{}{"event": event.EventName()})
		return err
	}
	return nil
}

func NewOccupancyJournalHandler(journal domain.OccupancyJournal, logger pkgApp.AppLogger) pkgApp.EventHandler[OccupancyEvent, domain.OccupancyChange] {
	return &occupancyJournalHandler{
		journal: journal,
		logger:  logger,
	}
}

type occupancyLogHandler struct {
	logger pkgApp.AppLogger
}

func (h *occupancyLogHandler) Handle(ctx context.Context, event OccupancyEvent) error {
	change := event.Payload()
	pkgApp.LogDebug(ctx, h.logger, "event received", map[string]interface{}{
		"event":      event.EventName(),
		"vehicle_id": change.VehicleID,
		"passenger":  change.PassengerName,
	})
	return nil
}

func NewOccupancyLogHandler(logger pkgApp.AppLogger) pkgApp.EventHandler[OccupancyEvent, domain.OccupancyChange] {
	return &occupancyLogHandler{logger: logger}
}
