package application

import (
	"github.com/mateusmacedo/go-fleet/pkg/domain"
)

const (
	RegisterVehicleCommand    = "RegisterVehicle"
	BoardPassengerCommand     = "BoardPassenger"
	DisembarkPassengerCommand = "DisembarkPassenger"
)

// RegisterVehicleData adds a vehicle to the fleet. A zero Capacity means the
// kind's default; an empty AcceptedRoles accepts every role.
type RegisterVehicleData struct {
	VehicleID     string   `json:"vehicleId"`
	Kind          string   `json:"kind"`
	Capacity      int      `json:"capacity"`
	AcceptedRoles []string `json:"acceptedRoles,omitempty"`
}

type registerVehicleCommand struct {
	data RegisterVehicleData
}

func (c registerVehicleCommand) CommandName() string { return RegisterVehicleCommand }

func (c registerVehicleCommand) Payload() RegisterVehicleData { return c.data }

func NewRegisterVehicleCommand(data RegisterVehicleData) domain.Command[RegisterVehicleData] {
	return registerVehicleCommand{data: data}
}

// BoardPassengerData seats a passenger, identified by name, on a vehicle.
type BoardPassengerData struct {
	VehicleID     string `json:"vehicleId"`
	PassengerName string `json:"name"`
	Role          string `json:"role,omitempty"`
}

type boardPassengerCommand struct {
	data BoardPassengerData
}

func (c boardPassengerCommand) CommandName() string { return BoardPassengerCommand }

func (c boardPassengerCommand) Payload() BoardPassengerData { return c.data }

func NewBoardPassengerCommand(data BoardPassengerData) domain.Command[BoardPassengerData] {
	return boardPassengerCommand{data: data}
}

// DisembarkPassengerData removes a seated passenger from a vehicle.
type DisembarkPassengerData struct {
	VehicleID     string `json:"vehicleId"`
	PassengerName string `json:"name"`
}

type disembarkPassengerCommand struct {
	data DisembarkPassengerData
}

func (c disembarkPassengerCommand) CommandName() string { return DisembarkPassengerCommand }

func (c disembarkPassengerCommand) Payload() DisembarkPassengerData { return c.data }

func NewDisembarkPassengerCommand(data DisembarkPassengerData) domain.Command[DisembarkPassengerData] {
	return disembarkPassengerCommand{data: data}
}
