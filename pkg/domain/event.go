package domain

// Event is a named fact that already happened.
type Event[T any] interface {
	EventName() string
	Payload() T
}
