package domain

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind names a vehicle type. Kinds only differ in default capacity.
type Kind string

const (
	KindBus       Kind = "Bus"
	KindTaxi      Kind = "Taxi"
	KindPoliceCar Kind = "PoliceCar"
	KindFireTruck Kind = "FireTruck"
)

var defaultCapacities = map[Kind]int{
	KindBus:       30,
	KindTaxi:      3,
	KindPoliceCar: 4,
	KindFireTruck: 4,
}

// ParseKind maps user input (case-insensitive) to a known Kind.
func ParseKind(s string) (Kind, error) {
	for kind := range defaultCapacities {
		if strings.EqualFold(string(kind), strings.TrimSpace(s)) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: unknown vehicle kind %q", ErrInvalidInput, s)
}

// DefaultCapacity returns the seat count used when none is requested.
func (k Kind) DefaultCapacity() int {
	return defaultCapacities[k]
}

// RolePolicy decides whether a vehicle takes passengers of a role.
type RolePolicy func(Role) bool

// AcceptAnyRole is the default policy.
func AcceptAnyRole(Role) bool { return true }

// AcceptRoles returns a policy that only takes the listed roles.
// With no roles it behaves like AcceptAnyRole.
func AcceptRoles(roles ...Role) RolePolicy {
	if len(roles) == 0 {
		return AcceptAnyRole
	}
	allowed := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(r Role) bool {
		_, ok := allowed[r]
		return ok
	}
}

// VehicleOption configures a Vehicle.
type VehicleOption func(*Vehicle)

// WithID sets the vehicle identifier. Without it the vehicle gets a
// generated "<kind>-<uuid>" identifier.
func WithID(id string) VehicleOption {
	return func(v *Vehicle) {
		if id != "" {
			v.id = id
		}
	}
}

// WithRolePolicy restricts which passenger roles may board.
func WithRolePolicy(policy RolePolicy) VehicleOption {
	return func(v *Vehicle) {
		if policy != nil {
			v.accepts = policy
		}
	}
}

// Vehicle is a bounded, ordered set of seated passengers. Uniqueness of a
// passenger across vehicles is delegated to the shared registry.
type Vehicle struct {
	id       string
	kind     Kind
	capacity int
	registry *OccupancyRegistry
	accepts  RolePolicy

	mu     sync.RWMutex
	seated []*Passenger
}

// NewVehicle builds a vehicle bound to registry.
func NewVehicle(kind Kind, capacity int, registry *OccupancyRegistry, opts ...VehicleOption) (*Vehicle, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidInput, capacity)
	}
	if kind == "" {
		return nil, fmt.Errorf("%w: vehicle kind is required", ErrInvalidInput)
	}
	if registry == nil {
		return nil, fmt.Errorf("%w: occupancy registry is required", ErrInvalidInput)
	}

	v := &Vehicle{
		id:       string(kind) + "-" + uuid.NewString(),
		kind:     kind,
		capacity: capacity,
		registry: registry,
		accepts:  AcceptAnyRole,
		seated:   make([]*Passenger, 0, capacity),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Vehicle) ID() string { return v.id }

func (v *Vehicle) Kind() Kind { return v.kind }

// Board seats p. A failed call leaves both the vehicle and the registry
// unchanged.
func (v *Vehicle) Board(p *Passenger) error {
	_, err := v.BoardAndCount(p)
	return err
}

// BoardAndCount is Board returning the occupied seat count taken under the
// same lock as the boarding.
func (v *Vehicle) BoardAndCount(p *Passenger) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: passenger cannot be nil", ErrInvalidInput)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.seated) >= v.capacity {
		return len(v.seated), fmt.Errorf("%w: %s has %d of %d seats taken", ErrCapacityExceeded, v.id, len(v.seated), v.capacity)
	}
	if !v.accepts(p.role) {
		return len(v.seated), fmt.Errorf("%w: %s does not take role %q", ErrRoleNotAccepted, v.id, p.role)
	}
	if !v.registry.TryClaim(p.name) {
		return len(v.seated), fmt.Errorf("%w: passenger with name '%s'", ErrDuplicateOccupancy, p.name)
	}

	v.seated = append(v.seated, p)
	return len(v.seated), nil
}

// Disembark removes p, matched by identity, and frees its name. Both happen
// under the vehicle lock.
func (v *Vehicle) Disembark(p *Passenger) error {
	_, err := v.DisembarkAndCount(p)
	return err
}

// DisembarkAndCount is Disembark returning the occupied seat count taken
// under the same lock as the removal.
func (v *Vehicle) DisembarkAndCount(p *Passenger) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: passenger cannot be nil", ErrInvalidInput)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	idx := slices.Index(v.seated, p)
	if idx < 0 {
		return len(v.seated), fmt.Errorf("%w: %s is not seated on %s", ErrNotSeatedHere, p.name, v.id)
	}

	v.seated = slices.Delete(v.seated, idx, idx+1)
	v.registry.Release(p.name)
	return len(v.seated), nil
}

// OccupiedSeats returns the number of seated passengers.
func (v *Vehicle) OccupiedSeats() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.seated)
}

// MaxSeats returns the fixed capacity.
func (v *Vehicle) MaxSeats() int {
	return v.capacity
}

// SeatedPassengers returns a copy of the seated passengers in boarding order.
func (v *Vehicle) SeatedPassengers() []*Passenger {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return slices.Clone(v.seated)
}

// SeatedPassenger finds a seated passenger by name.
func (v *Vehicle) SeatedPassenger(name string) (*Passenger, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, p := range v.seated {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// PassengerView is the serializable form of a seated passenger.
type PassengerView struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// VehicleSnapshot is a consistent read of a vehicle's state.
type VehicleSnapshot struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Capacity   int             `json:"capacity"`
	Occupied   int             `json:"occupied"`
	Passengers []PassengerView `json:"passengers"`
}

// Snapshot reads every field under a single lock.
func (v *Vehicle) Snapshot() VehicleSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	passengers := make([]PassengerView, 0, len(v.seated))
	for _, p := range v.seated {
		passengers = append(passengers, PassengerView{Name: p.name, Role: p.role})
	}
	return VehicleSnapshot{
		ID:         v.id,
		Kind:       v.kind,
		Capacity:   v.capacity,
		Occupied:   len(passengers),
		Passengers: passengers,
	}
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("%s (capacity=%d, occupied=%d)", v.kind, v.capacity, v.OccupiedSeats())
}
