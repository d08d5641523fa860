package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type SpaceID string

// NewSpaceID generates a new unique SpaceID
func NewSpaceID() SpaceID {
	return SpaceID(uuid.New().String())
}

// Space is a named grouping of items. It has no behavior of its own.
type Space struct {
	ID          SpaceID
	Name        string
	Description string
	CreatedAt   time.Time
}

// Validate checks if the space is valid
func (s *Space) Validate() error {
	if s.ID == "" {
		return goerr.New("space ID is empty")
	}
	if s.Name == "" {
		return goerr.New("space name is empty")
	}
	return nil
}
