package domain

// Query is a named read request carrying a typed payload.
type Query[T any] interface {
	QueryName() string
	Payload() T
}
