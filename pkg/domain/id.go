package domain

// IDGenerator produces identifiers for new aggregates.
type IDGenerator[T comparable] func() T
