package domain

import (
	"context"
	"time"
)

// OccupancyAction is what happened to a seat.
type OccupancyAction string

const (
	ActionBoarded     OccupancyAction = "boarded"
	ActionDisembarked OccupancyAction = "disembarked"
)

// OccupancyChange describes one successful board or disembark.
type OccupancyChange struct {
	VehicleID     string          `json:"vehicleId"`
	VehicleKind   Kind            `json:"vehicleKind"`
	PassengerName string          `json:"passengerName"`
	Role          Role            `json:"role"`
	Action        OccupancyAction `json:"action"`
	Occupied      int             `json:"occupied"`
	Capacity      int             `json:"capacity"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// OccupancyJournal keeps an audit trail of occupancy changes.
type OccupancyJournal interface {
	Record(ctx context.Context, change OccupancyChange) error
	// History returns the changes for a passenger name, oldest first.
	History(ctx context.Context, passengerName string) ([]OccupancyChange, error)
}
