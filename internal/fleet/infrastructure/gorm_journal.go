package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgApp "github.com/mateusmacedo/go-fleet/pkg/application"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// occupancyRecord is the table row behind GormOccupancyJournal.
type occupancyRecord struct {
	ID            uint   `gorm:"primaryKey"`
	VehicleID     string `gorm:"size:128;not null"`
	VehicleKind   string `gorm:"size:32;not null"`
	PassengerName string `gorm:"size:255;not null;index"`
	Role          string `gorm:"size:32;not null"`
	Action        string `gorm:"size:16;not null"`
	Occupied      int
	Capacity      int
	OccurredAt    time.Time `gorm:"not null"`
}

func (occupancyRecord) TableName() string { return "occupancy_changes" }

func toRecord(c domain.OccupancyChange) occupancyRecord {
	return occupancyRecord{
		VehicleID:     c.VehicleID,
		VehicleKind:   string(c.VehicleKind),
		PassengerName: c.PassengerName,
		Role:          string(c.Role),
		Action:        string(c.Action),
		Occupied:      c.Occupied,
		Capacity:      c.Capacity,
		OccurredAt:    c.OccurredAt,
	}
}

func (r occupancyRecord) toChange() domain.OccupancyChange {
	return domain.OccupancyChange{
		VehicleID:     r.VehicleID,
		VehicleKind:   domain.Kind(r.VehicleKind),
		PassengerName: r.PassengerName,
		Role:          domain.Role(r.Role),
		Action:        domain.OccupancyAction(r.Action),
		Occupied:      r.Occupied,
		Capacity:      r.Capacity,
		OccurredAt:    r.OccurredAt,
	}
}

type GormOccupancyJournal struct {
	db     *gorm.DB
	logger pkgApp.AppLogger
}

// Dialector picks the GORM driver for a journal driver name.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}
}

func NewGormOccupancyJournal(dialector gorm.Dialector, logger pkgApp.AppLogger) (*GormOccupancyJournal, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(&occupancyRecord{}); err != nil {
		return nil, closeAfter(db, err)
	}

	return &GormOccupancyJournal{
		db:     db,
		logger: logger,
	}, nil
}

func (j *GormOccupancyJournal) Record(ctx context.Context, change domain.OccupancyChange) error {
	record := toRecord(change)
	if err := j.db.WithContext(ctx).Create(&record).Error; err != nil {
		pkgApp.LogError(ctx, j.logger, "failed to record occupancy change", err, map[string]interface{}{
			"passenger": change.PassengerName,
			"vehicle":   change.VehicleID,
		})
		return err
	}
	return nil
}

func (j *GormOccupancyJournal) History(ctx context.Context, passengerName string) ([]domain.OccupancyChange, error) {
	var records []occupancyRecord
	if err := j.db.WithContext(ctx).
		Where("passenger_name = ?", passengerName).
		Order("id asc").
		Find(&records).Error; err != nil {
		pkgApp.LogError(ctx, j.logger, "failed to read occupancy history", err, map[string]interface{}{
			"passenger": passengerName,
		})
		return nil, err
	}

	history := make([]domain.OccupancyChange, 0, len(records))
	for _, r := range records {
		history = append(history, r.toChange())
	}
	return history, nil
}

// Close releases the underlying connection pool.
func (j *GormOccupancyJournal) Close() error {
	return closePool(j.db)
}

func closePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// closeAfter releases the pool opened for a journal that failed to start and
// returns cause joined with any close error.
func closeAfter(db *gorm.DB, cause error) error {
	return errors.Join(cause, closePool(db))
}
