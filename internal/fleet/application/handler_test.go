package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-fleet/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/zaplogger/adapter"
)

type fleetRepository struct {
	fleet *domain.Fleet
}

func (r *fleetRepository) Save(_ context.Context, v *domain.Vehicle) error { return r.fleet.Register(v) }

func (r *fleetRepository) FindByID(_ context.Context, id string) (*domain.Vehicle, error) {
	return r.fleet.Find(id)
}

func (r *fleetRepository) FindAll(context.Context) ([]*domain.Vehicle, error) {
	return r.fleet.Vehicles(), nil
}

type sliceJournal struct {
	mu      sync.Mutex
	changes []domain.OccupancyChange
}

func (j *sliceJournal) Record(_ context.Context, c domain.OccupancyChange) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.changes = append(j.changes, c)
	return nil
}

func (j *sliceJournal) History(_ context.Context, name string) ([]domain.OccupancyChange, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.OccupancyChange
	for _, c := range j.changes {
		if c.PassengerName == name {
			out = append(out, c)
		}
	}
	return out, nil
}

type recordingEventBus struct {
	mu     sync.Mutex
	err    error
	events []OccupancyEvent
}

func (b *recordingEventBus) RegisterHandler(string, pkgApp.EventHandler[OccupancyEvent, domain.OccupancyChange]) {
}

func (b *recordingEventBus) Publish(_ context.Context, e OccupancyEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return b.err
}

type fixture struct {
	registry *domain.OccupancyRegistry
	repo     *fleetRepository
	events   *recordingEventBus
	logger   pkgApp.AppLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		registry: domain.NewOccupancyRegistry(),
		repo:     &fleetRepository{fleet: domain.NewFleet()},
		events:   &recordingEventBus{},
		logger:   zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t)),
	}
}

func (f *fixture) register(t *testing.T, data RegisterVehicleData) {
	t.Helper()
	h := NewRegisterVehicleHandler(f.repo, f.registry, func() string { return "generated" }, f.logger)
	if err := h.Handle(context.Background(), NewRegisterVehicleCommand(data)); err != nil {
		t.Fatalf("register %+v: %v", data, err)
	}
}

func (f *fixture) board(vehicleID, name, role string) error {
	h := NewBoardPassengerHandler(f.events, f.repo, f.logger)
	return h.Handle(context.Background(), NewBoardPassengerCommand(BoardPassengerData{
		VehicleID:     vehicleID,
		PassengerName: name,
		Role:          role,
	}))
}

func (f *fixture) disembark(vehicleID, name string) error {
	h := NewDisembarkPassengerHandler(f.events, f.repo, f.logger)
	return h.Handle(context.Background(), NewDisembarkPassengerCommand(DisembarkPassengerData{
		VehicleID:     vehicleID,
		PassengerName: name,
	}))
}

func TestRegisterVehicleHandler(t *testing.T) {
	tests := []struct {
		name         string
		data         RegisterVehicleData
		wantErr      error
		wantID       string
		wantCapacity int
	}{
		{"default capacity", RegisterVehicleData{VehicleID: "taxi-1", Kind: "taxi"}, nil, "taxi-1", 3},
		{"explicit capacity", RegisterVehicleData{VehicleID: "bus-1", Kind: "Bus", Capacity: 12}, nil, "bus-1", 12},
		{"generated id", RegisterVehicleData{Kind: "firetruck"}, nil, "generated", 4},
		{"negative capacity", RegisterVehicleData{Kind: "bus", Capacity: -1}, domain.ErrInvalidInput, "", 0},
		{"unknown kind", RegisterVehicleData{Kind: "tram"}, domain.ErrInvalidInput, "", 0},
		{"unknown role", RegisterVehicleData{Kind: "bus", AcceptedRoles: []string{"pilot"}}, domain.ErrInvalidInput, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			h := NewRegisterVehicleHandler(f.repo, f.registry, func() string { return "generated" }, f.logger)
			err := h.Handle(context.Background(), NewRegisterVehicleCommand(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Handle() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			v, err := f.repo.FindByID(context.Background(), tt.wantID)
			if err != nil {
				t.Fatalf("FindByID(%q) error: %v", tt.wantID, err)
			}
			if v.MaxSeats() != tt.wantCapacity {
				t.Errorf("MaxSeats() = %d, want %d", v.MaxSeats(), tt.wantCapacity)
			}
		})
	}
}

func TestRegisterVehicleHandlerDuplicateID(t *testing.T) {
	f := newFixture(t)
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})

	h := NewRegisterVehicleHandler(f.repo, f.registry, func() string { return "x" }, f.logger)
	err := h.Handle(context.Background(), NewRegisterVehicleCommand(RegisterVehicleData{VehicleID: "bus-1", Kind: "taxi"}))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("duplicate id error = %v, want ErrInvalidInput", err)
	}
}

func TestBoardPassengerHandlerPublishesEvent(t *testing.T) {
	f := newFixture(t)
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})

	if err := f.board("bus-1", "Alice", ""); err != nil {
		t.Fatalf("board: %v", err)
	}

	if len(f.events.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.events.events))
	}
	ev := f.events.events[0]
	if ev.EventName() != PassengerBoardedEvent {
		t.Errorf("EventName() = %q, want %q", ev.EventName(), PassengerBoardedEvent)
	}
	change := ev.Payload()
	if change.VehicleID != "bus-1" || change.PassengerName != "Alice" || change.Action != domain.ActionBoarded {
		t.Errorf("unexpected change %+v", change)
	}
	if change.Role != domain.RoleCivilian || change.Occupied != 1 || change.Capacity != 30 {
		t.Errorf("unexpected change %+v", change)
	}
	if change.OccurredAt.IsZero() {
		t.Error("OccurredAt is zero")
	}
}

func TestBoardPassengerHandlerErrors(t *testing.T) {
	f := newFixture(t)
	f.register(t, RegisterVehicleData{VehicleID: "taxi-1", Kind: "taxi", Capacity: 1})
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})
	f.register(t, RegisterVehicleData{VehicleID: "police-1", Kind: "policecar", AcceptedRoles: []string{"officer"}})

	if err := f.board("taxi-1", "Alice", ""); err != nil {
		t.Fatalf("board Alice: %v", err)
	}

	tests := []struct {
		name    string
		vehicle string
		pName   string
		role    string
		wantErr error
	}{
		{"unknown vehicle", "tram-9", "Bob", "", domain.ErrVehicleNotFound},
		{"vehicle full", "taxi-1", "Bob", "", domain.ErrCapacityExceeded},
		{"already on another vehicle", "bus-1", "Alice", "", domain.ErrDuplicateOccupancy},
		{"blank name", "bus-1", "  ", "", domain.ErrInvalidInput},
		{"unknown role", "bus-1", "Bob", "pilot", domain.ErrInvalidInput},
		{"role not accepted", "police-1", "Bob", "civilian", domain.ErrRoleNotAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.board(tt.vehicle, tt.pName, tt.role); !errors.Is(err, tt.wantErr) {
				t.Errorf("board() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if got := len(f.events.events); got != 1 {
		t.Errorf("published %d events, want only the successful boarding", got)
	}
}

func TestBoardPassengerHandlerEventCountsUnderConcurrency(t *testing.T) {
	const seats = 16
	f := newFixture(t)
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus", Capacity: seats})

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < seats; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if err := f.board("bus-1", fmt.Sprintf("rider-%d", i), ""); err != nil {
				t.Errorf("board rider-%d: %v", i, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if len(f.events.events) != seats {
		t.Fatalf("published %d events, want %d", len(f.events.events), seats)
	}
	counts := make([]int, 0, seats)
	for _, e := range f.events.events {
		counts = append(counts, e.Payload().Occupied)
	}
	sort.Ints(counts)
	for i, got := range counts {
		if got != i+1 {
			t.Fatalf("occupied counts = %v, want 1..%d each once", counts, seats)
		}
	}
}

func TestSeatRefusalsAreNotLoggedAsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := newFixture(t)
	f.logger = zapAdapter.NewZapAppLoggerFrom(zap.New(core))
	f.register(t, RegisterVehicleData{VehicleID: "taxi-1", Kind: "taxi", Capacity: 1})
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})
	f.register(t, RegisterVehicleData{VehicleID: "police-1", Kind: "policecar", AcceptedRoles: []string{"officer"}})
	if err := f.board("taxi-1", "Alice", ""); err != nil {
		t.Fatalf("board Alice: %v", err)
	}

	refusals := []func() error{
		func() error { return f.board("taxi-1", "Bob", "") },
		func() error { return f.board("bus-1", "Alice", "") },
		func() error { return f.board("police-1", "Bob", "civilian") },
		func() error { return f.disembark("bus-1", "Alice") },
	}
	for i, refuse := range refusals {
		if err := refuse(); err == nil {
			t.Fatalf("refusal %d succeeded", i)
		}
	}

	if errs := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); errs != 0 {
		t.Errorf("logged %d errors for expected refusals: %v", errs, logs.FilterLevelExact(zapcore.ErrorLevel).All())
	}
	if got := logs.FilterMessageSnippet("refused").FilterLevelExact(zapcore.InfoLevel).Len(); got != len(refusals) {
		t.Errorf("logged %d refusals at info, want %d", got, len(refusals))
	}

	if err := f.board("tram-9", "Bob", ""); !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Fatalf("board on unknown vehicle error = %v", err)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() == 0 {
		t.Error("repository failure should be logged at error level")
	}
}

func TestBoardPassengerHandlerPublishFailureKeepsSeat(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})

	if err := f.board("bus-1", "Alice", ""); err != nil {
		t.Fatalf("board() error = %v, want nil despite publish failure", err)
	}
	if !f.registry.Contains("Alice") {
		t.Error("Alice should stay registered")
	}
}

func TestDisembarkPassengerHandler(t *testing.T) {
	f := newFixture(t)
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})
	f.register(t, RegisterVehicleData{VehicleID: "taxi-1", Kind: "taxi"})

	if err := f.board("bus-1", "Alice", "officer"); err != nil {
		t.Fatalf("board: %v", err)
	}

	if err := f.disembark("taxi-1", "Alice"); !errors.Is(err, domain.ErrNotSeatedHere) {
		t.Errorf("disembark from wrong vehicle error = %v, want ErrNotSeatedHere", err)
	}
	if err := f.disembark("tram-9", "Alice"); !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Errorf("disembark from unknown vehicle error = %v, want ErrVehicleNotFound", err)
	}
	if err := f.disembark("bus-1", "Alice"); err != nil {
		t.Fatalf("disembark: %v", err)
	}
	if f.registry.Contains("Alice") {
		t.Error("Alice should be released")
	}

	last := f.events.events[len(f.events.events)-1]
	if last.EventName() != PassengerDisembarkedEvent {
		t.Errorf("EventName() = %q, want %q", last.EventName(), PassengerDisembarkedEvent)
	}
	if c := last.Payload(); c.Occupied != 0 || c.Role != domain.RoleOfficer {
		t.Errorf("unexpected change %+v", c)
	}

	if err := f.board("taxi-1", "Alice", ""); err != nil {
		t.Errorf("reboarding after disembark: %v", err)
	}
}

func TestQueryHandlers(t *testing.T) {
	f := newFixture(t)
	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})
	f.register(t, RegisterVehicleData{VehicleID: "taxi-1", Kind: "taxi"})
	for _, step := range []struct{ vehicle, name string }{
		{"bus-1", "Alice"}, {"bus-1", "Bob"}, {"taxi-1", "Charlie"},
	} {
		if err := f.board(step.vehicle, step.name, ""); err != nil {
			t.Fatalf("board %s: %v", step.name, err)
		}
	}
	ctx := context.Background()

	snap, err := NewFindVehicleHandler(f.repo, f.logger).Handle(ctx, NewFindVehicleQuery(FindVehicleData{VehicleID: "bus-1"}))
	if err != nil {
		t.Fatalf("FindVehicle: %v", err)
	}
	if snap.Occupied != 2 || len(snap.Passengers) != 2 || snap.Passengers[0].Name != "Alice" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	if _, err := NewFindVehicleHandler(f.repo, f.logger).Handle(ctx, NewFindVehicleQuery(FindVehicleData{VehicleID: "nope"})); !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Errorf("FindVehicle(nope) error = %v, want ErrVehicleNotFound", err)
	}

	report, err := NewFleetStatusHandler(f.repo, f.logger).Handle(ctx, NewFleetStatusQuery())
	if err != nil {
		t.Fatalf("FleetStatus: %v", err)
	}
	if report.TotalOccupied != 3 || report.TotalCapacity != 33 || len(report.Vehicles) != 2 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestJournalHandlerThroughEventBus(t *testing.T) {
	f := newFixture(t)
	journal := &sliceJournal{}
	bus := pkgInfra.NewSimpleEventBus[OccupancyEvent, domain.OccupancyChange](f.logger)
	bus.RegisterHandler(PassengerBoardedEvent, NewOccupancyJournalHandler(journal, f.logger))
	bus.RegisterHandler(PassengerDisembarkedEvent, NewOccupancyJournalHandler(journal, f.logger))
	bus.RegisterHandler(PassengerBoardedEvent, NewOccupancyLogHandler(f.logger))

	f.register(t, RegisterVehicleData{VehicleID: "bus-1", Kind: "bus"})
	ctx := context.Background()
	board := NewBoardPassengerHandler(bus, f.repo, f.logger)
	disembark := NewDisembarkPassengerHandler(bus, f.repo, f.logger)

	if err := board.Handle(ctx, NewBoardPassengerCommand(BoardPassengerData{VehicleID: "bus-1", PassengerName: "Alice"})); err != nil {
		t.Fatalf("board: %v", err)
	}
	if err := disembark.Handle(ctx, NewDisembarkPassengerCommand(DisembarkPassengerData{VehicleID: "bus-1", PassengerName: "Alice"})); err != nil {
		t.Fatalf("disembark: %v", err)
	}

	history, err := NewPassengerHistoryHandler(journal, f.logger).Handle(ctx, NewPassengerHistoryQuery(PassengerHistoryData{PassengerName: "Alice"}))
	if err != nil {
		t.Fatalf("PassengerHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d entries, want 2", len(history))
	}
	if history[0].Action != domain.ActionBoarded || history[1].Action != domain.ActionDisembarked {
		t.Errorf("history actions = %s, %s", history[0].Action, history[1].Action)
	}
}

func TestHandlersRejectCancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reg := NewRegisterVehicleHandler(f.repo, f.registry, func() string { return "x" }, f.logger)
	if err := reg.Handle(ctx, NewRegisterVehicleCommand(RegisterVehicleData{Kind: "bus"})); !errors.Is(err, context.Canceled) {
		t.Errorf("register error = %v, want context.Canceled", err)
	}
	board := NewBoardPassengerHandler(f.events, f.repo, f.logger)
	if err := board.Handle(ctx, NewBoardPassengerCommand(BoardPassengerData{VehicleID: "x", PassengerName: "A"})); !errors.Is(err, context.Canceled) {
		t.Errorf("board error = %v, want context.Canceled", err)
	}
	if _, err := NewFleetStatusHandler(f.repo, f.logger).Handle(ctx, NewFleetStatusQuery()); !errors.Is(err, context.Canceled) {
		t.Errorf("status error = %v, want context.Canceled", err)
	}
}
