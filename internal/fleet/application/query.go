package application

import (
	"github.com/mateusmacedo/go-fleet/pkg/domain"
)

const (
	FindVehicleQuery      = "FindVehicle"
	FleetStatusQuery      = "FleetStatus"
	PassengerHistoryQuery = "PassengerHistory"
)

type FindVehicleData struct {
	VehicleID string
}

type findVehicleQuery struct {
	data FindVehicleData
}

func (q findVehicleQuery) QueryName() string { return FindVehicleQuery }

func (q findVehicleQuery) Payload() FindVehicleData { return q.data }

func NewFindVehicleQuery(data FindVehicleData) domain.Query[FindVehicleData] {
	return findVehicleQuery{data: data}
}

// FleetStatusData has no filters; the report always covers every vehicle.
type FleetStatusData struct{}

type fleetStatusQuery struct{}

func (q fleetStatusQuery) QueryName() string { return FleetStatusQuery }

func (q fleetStatusQuery) Payload() FleetStatusData { return FleetStatusData{} }

func NewFleetStatusQuery() domain.Query[FleetStatusData] {
	return fleetStatusQuery{}
}

type PassengerHistoryData struct {
	PassengerName string
}

type passengerHistoryQuery struct {
	data PassengerHistoryData
}

func (q passengerHistoryQuery) QueryName() string { return PassengerHistoryQuery }

func (q passengerHistoryQuery) Payload() PassengerHistoryData { return q.data }

func NewPassengerHistoryQuery(data PassengerHistoryData) domain.Query[PassengerHistoryData] {
	return passengerHistoryQuery{data: data}
}
