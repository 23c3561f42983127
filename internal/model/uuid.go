package model

import "github.com/google/uuid"

// NewID mints a client-side identifier.
func NewID() string {
	return uuid.New().String()
}
