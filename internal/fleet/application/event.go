package application

import (
	"github.com/mateusmacedo/go-fleet/internal/fleet/domain"
	pkgDomain "github.com/mateusmacedo/go-fleet/pkg/domain"
)

const (
	PassengerBoardedEvent     = "PassengerBoarded"
	PassengerDisembarkedEvent = "PassengerDisembarked"
)

type occupancyEvent struct {
	name string
	data domain.OccupancyChange
}

func (e occupancyEvent) EventName() string { return e.name }

func (e occupancyEvent) Payload() domain.OccupancyChange { return e.data }

func NewPassengerBoardedEvent(change domain.OccupancyChange) pkgDomain.Event[domain.OccupancyChange] {
	return occupancyEvent{name: PassengerBoardedEvent, data: change}
}

func NewPassengerDisembarkedEvent(change domain.OccupancyChange) pkgDomain.Event[domain.OccupancyChange] {
	return occupancyEvent{name: PassengerDisembarkedEvent, data: change}
}
