package model

import "github.com/google/uuid"

// NewID returns a random element id.
func NewID() string {
	return uuid.NewString()
}
