package utils

import (
	"github.com/google/uuid"
)

// UUID generates a new random UUID string.
func UUID() string {
	return uuid.New().String()
}

// URN returns a new UUID in urn:uuid: form which is used as a credential ID.
func URN() string {
	return uuid.New().URN()
}
