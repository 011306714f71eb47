package domain

import (
	"context"
	"fmt"
	"sync"
)

// Fleet holds vehicles for reporting. It only reads vehicle state; every
// total is recomputed on each call.
type Fleet struct {
	mu       sync.RWMutex
	vehicles []*Vehicle
	byID     map[string]*Vehicle
}

func NewFleet() *Fleet {
	return &Fleet{
		byID: make(map[string]*Vehicle),
	}
}

// Add appends v. Only a nil vehicle is rejected. When two vehicles share an
// ID, Find returns the one added first.
func (f *Fleet) Add(v *Vehicle) error {
	if v == nil {
		return fmt.Errorf("%w: vehicle cannot be nil", ErrInvalidInput)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.append(v)
	return nil
}

// Register appends v unless its ID is already taken. Lookups by ID go
// through Register so Find stays unambiguous.
func (f *Fleet) Register(v *Vehicle) error {
	if v == nil {
		return fmt.Errorf("%w: vehicle cannot be nil", ErrInvalidInput)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.byID[v.ID()]; exists {
		return fmt.Errorf("%w: vehicle %s already registered", ErrInvalidInput, v.ID())
	}
	f.append(v)
	return nil
}

func (f *Fleet) append(v *Vehicle) {
	if _, exists := f.byID[v.ID()]; !exists {
		f.byID[v.ID()] = v
	}
	f.vehicles = append(f.vehicles, v)
}

func (f *Fleet) Find(id string) (*Vehicle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
	}
	return v, nil
}

// Vehicles returns the vehicles in the order they were added.
func (f *Fleet) Vehicles() []*Vehicle {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]*Vehicle, len(f.vehicles))
	copy(out, f.vehicles)
	return out
}

// TotalOccupied sums OccupiedSeats over the fleet.
func (f *Fleet) TotalOccupied() int {
	total := 0
	for _, v := range f.Vehicles() {
		total += v.OccupiedSeats()
	}
	return total
}

// TotalCapacity sums MaxSeats over the fleet.
func (f *Fleet) TotalCapacity() int {
	total := 0
	for _, v := range f.Vehicles() {
		total += v.MaxSeats()
	}
	return total
}

// FleetReport summarizes a set of vehicles.
type FleetReport struct {
	Vehicles      []VehicleSnapshot `json:"vehicles"`
	TotalOccupied int               `json:"totalOccupied"`
	TotalCapacity int               `json:"totalCapacity"`
}

// NewFleetReport snapshots each vehicle and sums the snapshots, so the totals
// always agree with the listed vehicles.
func NewFleetReport(vehicles []*Vehicle) FleetReport {
	report := FleetReport{Vehicles: make([]VehicleSnapshot, 0, len(vehicles))}
	for _, v := range vehicles {
		s := v.Snapshot()
		report.Vehicles = append(report.Vehicles, s)
		report.TotalOccupied += s.Occupied
		report.TotalCapacity += s.Capacity
	}
	return report
}

// VehicleRepository stores the vehicles of a running service.
type VehicleRepository interface {
	Save(ctx context.Context, vehicle *Vehicle) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	FindAll(ctx context.Context) ([]*Vehicle, error)
}
