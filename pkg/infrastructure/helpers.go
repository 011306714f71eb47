package infrastructure

import (
	"github.com/google/uuid"
)

// GenerateUUID is the default string IDGenerator.
func GenerateUUID() string {
	return uuid.New().String()
}
