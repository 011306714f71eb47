package domain

import "errors"

// Sentinel errors returned by fleet operations. Callers match them with
// errors.Is; the returned errors wrap them with the offending value.
var (
	// ErrInvalidInput is returned for absent arguments, blank passenger names,
	// non-positive capacities and unknown kinds or roles.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCapacityExceeded is returned when a vehicle has no free seat.
	ErrCapacityExceeded = errors.New("no free seats")

	// ErrDuplicateOccupancy is returned when the passenger name is already
	// seated on some vehicle.
	ErrDuplicateOccupancy = errors.New("passenger is already on another transport")

	// ErrNotSeatedHere is returned when disembarking a passenger that is not
	// on this vehicle.
	ErrNotSeatedHere = errors.New("passenger is not on this transport")

	// ErrRoleNotAccepted is returned when the vehicle does not take the
	// passenger's role.
	ErrRoleNotAccepted = errors.New("passenger role not accepted")

	// ErrVehicleNotFound is returned by fleet and repository lookups.
	ErrVehicleNotFound = errors.New("vehicle not found")
)
