package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
	zapAdapter "github.com/mateusmacedo/go-fleet/pkg/infrastructure/zaplogger/adapter"
)

func newTestLogger(t *testing.T) pkgApp.AppLogger {
	t.Helper()
	return zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
}

func newVehicle(t *testing.T, id string, registry *domain.OccupancyRegistry) *domain.Vehicle {
	t.Helper()
	v, err := domain.NewVehicle(domain.KindBus, 2, registry, domain.WithID(id))
	if err != nil {
		t.Fatalf("NewVehicle: %v", err)
	}
	return v
}

func TestInMemoryVehicleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryVehicleRepository(newTestLogger(t))
	registry := domain.NewOccupancyRegistry()

	bus := newVehicle(t, "bus-1", registry)
	if err := repo.Save(ctx, bus); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, newVehicle(t, "bus-1", registry)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Save(duplicate) error = %v, want ErrInvalidInput", err)
	}

	got, err := repo.FindByID(ctx, "bus-1")
	if err != nil || got != bus {
		t.Errorf("FindByID(bus-1) = %v, %v; want the saved vehicle", got, err)
	}
	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Errorf("FindByID(missing) error = %v, want ErrVehicleNotFound", err)
	}

	all, err := repo.FindAll(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("FindAll() = %d vehicles, %v; want 1", len(all), err)
	}
	if repo.Fleet().TotalCapacity() != 2 {
		t.Errorf("Fleet().TotalCapacity() = %d, want 2", repo.Fleet().TotalCapacity())
	}
}

func sampleChanges() []domain.OccupancyChange {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []domain.OccupancyChange{
		{VehicleID: "bus-1", VehicleKind: domain.KindBus, PassengerName: "Alice", Role: domain.RoleCivilian, Action: domain.ActionBoarded, Occupied: 1, Capacity: 30, OccurredAt: at},
		{VehicleID: "bus-1", VehicleKind: domain.KindBus, PassengerName: "Bob", Role: domain.RoleOfficer, Action: domain.ActionBoarded, Occupied: 2, Capacity: 30, OccurredAt: at.Add(time.Second)},
		{VehicleID: "bus-1", VehicleKind: domain.KindBus, PassengerName: "Alice", Role: domain.RoleCivilian, Action: domain.ActionDisembarked, Occupied: 1, Capacity: 30, OccurredAt: at.Add(2 * time.Second)},
		{VehicleID: "taxi-1", VehicleKind: domain.KindTaxi, PassengerName: "Alice", Role: domain.RoleCivilian, Action: domain.ActionBoarded, Occupied: 1, Capacity: 3, OccurredAt: at.Add(3 * time.Second)},
	}
}

func exerciseJournal(t *testing.T, journal domain.OccupancyJournal) {
	t.Helper()
	ctx := context.Background()
	for _, c := range sampleChanges() {
		if err := journal.Record(ctx, c); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	history, err := journal.History(ctx, "Alice")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("History(Alice) has %d entries, want 3", len(history))
	}
	wantActions := []domain.OccupancyAction{domain.ActionBoarded, domain.ActionDisembarked, domain.ActionBoarded}
	for i, c := range history {
		if c.Action != wantActions[i] {
			t.Errorf("history[%d].Action = %s, want %s", i, c.Action, wantActions[i])
		}
	}
	if history[2].VehicleID != "taxi-1" || history[2].VehicleKind != domain.KindTaxi || history[2].Capacity != 3 {
		t.Errorf("unexpected last entry %+v", history[2])
	}
	if !history[0].OccurredAt.Equal(sampleChanges()[0].OccurredAt) {
		t.Errorf("OccurredAt = %v, want %v", history[0].OccurredAt, sampleChanges()[0].OccurredAt)
	}

	empty, err := journal.History(ctx, "Nobody")
	if err != nil || len(empty) != 0 {
		t.Errorf("History(Nobody) = %v, %v; want empty", empty, err)
	}
}

func TestInMemoryOccupancyJournal(t *testing.T) {
	exerciseJournal(t, NewInMemoryOccupancyJournal(newTestLogger(t)))
}

func TestInMemoryOccupancyJournalHistoryIsCopy(t *testing.T) {
	ctx := context.Background()
	journal := NewInMemoryOccupancyJournal(newTestLogger(t))
	_ = journal.Record(ctx, sampleChanges()[0])

	h, _ := journal.History(ctx, "Alice")
	h[0].VehicleID = "changed"

	again, _ := journal.History(ctx, "Alice")
	if again[0].VehicleID != "bus-1" {
		t.Error("History() exposed internal storage")
	}
}

func TestGormOccupancyJournalSQLite(t *testing.T) {
	dialector, err := Dialector(DriverSQLite, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Dialector: %v", err)
	}
	journal, err := NewGormOccupancyJournal(dialector, newTestLogger(t))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = journal.Close() })

	exerciseJournal(t, journal)
}

func TestFailedJournalStartClosesPool(t *testing.T) {
	dialector, err := Dialector(DriverSQLite, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Dialector: %v", err)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB(): %v", err)
	}

	cause := errors.New("migration failed")
	if err := closeAfter(db, cause); !errors.Is(err, cause) {
		t.Errorf("closeAfter() error = %v, want %v", err, cause)
	}
	if err := sqlDB.Ping(); err == nil {
		t.Error("pool is still open after a failed start")
	}
}

func TestDialectorRejectsUnknownDriver(t *testing.T) {
	if _, err := Dialector("mysql", "dsn"); err == nil {
		t.Error("Dialector(mysql) should fail")
	}
	if _, err := Dialector(DriverPostgres, "host=localhost"); err != nil {
		t.Errorf("Dialector(postgres) error: %v", err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: passenger is an officer", domain.ErrRoleNotAccepted), http.StatusBadRequest},
		{domain.ErrVehicleNotFound, http.StatusNotFound},
		{domain.ErrNotSeatedHere, http.StatusNotFound},
		{domain.ErrCapacityExceeded, http.StatusConflict},
		{fmt.Errorf("%w: passenger with name 'Alice'", domain.ErrDuplicateOccupancy), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
