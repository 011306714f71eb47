package domain

import (
	"fmt"
	"strings"
)

// Role is the capability tag carried by a passenger.
type Role string

const (
	RoleCivilian    Role = "civilian"
	RoleOfficer     Role = "officer"
	RoleFirefighter Role = "firefighter"
)

// ParseRole maps user input to a Role. An empty string is a civilian.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleCivilian:
		return RoleCivilian, nil
	case RoleOfficer:
		return RoleOfficer, nil
	case RoleFirefighter:
		return RoleFirefighter, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
	}
}

// Passenger is an individual identified by name. Two passengers with the same
// name are the same individual as far as seat occupancy goes.
type Passenger struct {
	name string
	role Role
}

// NewPassenger validates the name and returns a civilian passenger.
func NewPassenger(name string) (*Passenger, error) {
	return NewPassengerWithRole(name, RoleCivilian)
}

// NewPassengerWithRole validates the name and tags the passenger with role.
// The name is kept as given; only its trimmed form must be non-empty.
func NewPassengerWithRole(name string, role Role) (*Passenger, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if role == "" {
		role = RoleCivilian
	}
	return &Passenger{name: name, role: role}, nil
}

func (p *Passenger) Name() string { return p.name }

func (p *Passenger) Role() Role { return p.role }

func (p *Passenger) String() string {
	return fmt.Sprintf("%s (%s)", p.name, p.role)
}
